package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"support-bot/models"
	"support-bot/services"
)

var (
	adminEmail    string
	adminPassword string
	adminRole     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a dashboard user or reset its password",
	Long: `Creates the user in MongoDB (MONGO_URI, MONGO_DB_NAME) or, if the email
already exists, replaces its password and role.`,
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVarP(&adminEmail, "email", "e", "", "user email (required)")
	createAdminCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "password (default $ADMIN_PASSWORD)")
	createAdminCmd.Flags().StringVarP(&adminRole, "role", "r", string(models.RoleAdmin), "admin or analyst")
	createAdminCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(createAdminCmd)
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	if adminPassword == "" {
		adminPassword = os.Getenv("ADMIN_PASSWORD")
	}
	if !models.IsValidRole(adminRole) {
		return services.ErrInvalidRole
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB_NAME")
	if dbName == "" {
		dbName = "support_bot"
	}

	client, err := services.InitMongoDB(ctx, uri)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer client.Disconnect(context.Background())
	services.InitServices(client, dbName)

	user, err := services.UpsertUser(ctx, adminEmail, adminPassword, models.UserRole(adminRole))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s (%s) ready, id %s\n", user.Email, user.Role, user.ID.Hex())
	return nil
}
