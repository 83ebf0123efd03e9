package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"os"
	"time"

	"go.uber.org/zap"
)

// Ip identifies this instance in /api/status. Empty when nothing could be determined.
var Ip string

// LoadIp resolves the instance address. On ECS (IS_CLOUD set) the task metadata endpoint
// is authoritative; otherwise an explicit IP env var wins, then the hostname.
func LoadIp(env string) error {
	switch {
	case env == "development":
		Ip = "localhost"

	case os.Getenv("IS_CLOUD") != "":
		addr, err := ecsTaskIp(os.Getenv("ECS_CONTAINER_METADATA_URI"))
		if err != nil {
			return fmt.Errorf("error getting ECS task IP: %v", err)
		}
		Ip = addr.String()
		zap.L().Info("resolved ECS task IP", zap.String("ip", Ip))

	case os.Getenv("IP") != "":
		addr, err := netip.ParseAddr(os.Getenv("IP"))
		if err != nil {
			return fmt.Errorf("invalid IP env var: %v", err)
		}
		Ip = addr.String()

	default:
		if name, err := os.Hostname(); err == nil {
			Ip = name
		}
	}

	return nil
}

type taskMetadata struct {
	Networks []struct {
		IPv4Addresses []string `json:"IPv4Addresses"`
	} `json:"Networks"`
}

func ecsTaskIp(metadataUrl string) (netip.Addr, error) {
	if metadataUrl == "" {
		return netip.Addr{}, errors.New("ECS_CONTAINER_METADATA_URI is not set")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(metadataUrl)
	if err != nil {
		return netip.Addr{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return netip.Addr{}, fmt.Errorf("metadata endpoint returned %d", resp.StatusCode)
	}

	var meta taskMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return netip.Addr{}, fmt.Errorf("error decoding task metadata: %v", err)
	}

	for _, n := range meta.Networks {
		for _, raw := range n.IPv4Addresses {
			if addr, err := netip.ParseAddr(raw); err == nil {
				return addr, nil
			}
		}
	}

	return netip.Addr{}, errors.New("no IPv4 address in task metadata")
}
