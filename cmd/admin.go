package cmd

import (
	"context"
	"errors"
	"os"
	"strings"

	"portfolio-server/db"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var (
	adminEmail    string
	adminName     string
	adminPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin users",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin user",
	Args:  cobra.NoArgs,
	Run:   createAdmin,
}

func createAdmin(cmd *cobra.Command, args []string) {
	password := adminPassword
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	if err := validateAdmin(adminEmail, password); err != nil {
		outputErrorAndExit("%v", err)
	}

	cfg := mustInitCli()
	defer db.Close()

	email := adminEmail
	if email == "" {
		email = cfg.Email.AdminEmail
	}

	name := adminName
	if name == "" {
		name = strings.Split(email, "@")[0]
	}

	var user *db.User
	err := db.WithTx(context.Background(), "create admin", func(tx *sqlx.Tx) error {
		var err error
		user, err = db.CreateUser(name, email, password, true, tx)
		return err
	})
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			outputErrorAndExit("A user with email %s already exists", email)
		}
		outputErrorAndExit("Error creating admin: %v", err)
	}

	outputSuccess("Created admin %s (%s)", user.Email, user.Id)
}

func validateAdmin(email, password string) error {
	if email == "" && os.Getenv("ADMIN_EMAIL") == "" {
		return errors.New("--email is required")
	}
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters, pass --password or set ADMIN_PASSWORD")
	}
	return nil
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email")
	adminCreateCmd.Flags().StringVar(&adminName, "name", "", "Display name, defaults to the email's local part")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "Password, at least 12 characters")
	adminCmd.AddCommand(adminCreateCmd)
	RootCmd.AddCommand(adminCmd)
}
