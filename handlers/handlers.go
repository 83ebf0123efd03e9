package handlers

import (
	"crypto/rand"
	"time"

	"portfolio-server/config"
	"portfolio-server/content"
	"portfolio-server/model"
	"portfolio-server/security"
	"portfolio-server/telemetry"
)

// Deps are the process-wide services handlers read from. They are set once at startup.
type Deps struct {
	Config  *config.Config
	Content *content.Store
	Guard   *security.Guard
	CSP     *telemetry.CSPLog
	Vitals  *telemetry.Vitals
	Uptime  *telemetry.Uptime
	Chatbot *model.Chatbot
}

var deps Deps

var visitorKey []byte

var timeNow = time.Now

func Init(d Deps) error {
	if d.Config == nil {
		d.Config = config.Default()
	}
	if d.Content == nil {
		d.Content = content.NewStore(d.Config.Content.ProfilePath)
	}
	if d.CSP == nil {
		d.CSP = telemetry.NewCSPLog(telemetry.DefaultCSPCapacity)
	}
	if d.Vitals == nil {
		d.Vitals = telemetry.NewVitals(telemetry.DefaultVitalsCapacity)
	}
	if d.Uptime == nil {
		d.Uptime = telemetry.NewUptime(d.Config.Version)
	}
	if d.Guard == nil {
		guard, err := security.NewGuard(security.OptionsFromConfig(d.Config.Security))
		if err != nil {
			return err
		}
		d.Guard = guard
	}
	if d.Chatbot == nil {
		d.Chatbot = model.NewChatbot(model.ChatbotOptions{})
	}

	visitorKey = d.Config.Security.VisitorKey()
	if len(visitorKey) != 32 {
		// without a configured key, visitor hashes are stable only for this process
		visitorKey = make([]byte, 32)
		rand.Read(visitorKey)
	}

	deps = d
	return nil
}
