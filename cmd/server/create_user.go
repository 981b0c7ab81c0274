package main

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
	"github.com/AjayAlluri/Toyota-Financing/internal/auth"
	"github.com/AjayAlluri/Toyota-Financing/internal/config"
	"github.com/AjayAlluri/Toyota-Financing/internal/database"
	"github.com/AjayAlluri/Toyota-Financing/internal/models"
	"github.com/AjayAlluri/Toyota-Financing/internal/repository"
)

const minPasswordLength = 8

var createUserFlags struct {
	email     string
	password  string
	firstName string
	lastName  string
	role      string
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Provision a user or sales account",
	Long:  "Creates an account directly in the database. This is the only way to create sales accounts; their email must be listed in SALES_EMAILS.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return eris.Wrap(err, "connect to database")
		}
		defer pool.Close()

		user, err := provisionUser(ctx, repository.NewUserRepository(pool), cfg.Sales, accountInput{
			Email:     createUserFlags.email,
			Password:  createUserFlags.password,
			FirstName: createUserFlags.firstName,
			LastName:  createUserFlags.lastName,
			Role:      createUserFlags.role,
		})
		if err != nil {
			return err
		}

		zap.L().Info("user created",
			zap.String("user_id", user.ID.String()),
			zap.String("email", user.Email),
			zap.String("role", string(user.Role)),
		)
		return nil
	},
}

type accountInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// provisionUser проверяет ввод и создает учетную запись. Роль sales
// выдается только адресам из SALES_EMAILS.
func provisionUser(ctx context.Context, users *repository.UserRepository, sales config.SalesConfig, in accountInput) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, eris.New("a valid --email is required")
	}
	if len(in.Password) < minPasswordLength {
		return models.User{}, eris.Errorf("--password must be at least %d characters", minPasswordLength)
	}

	role, err := access.ParseRole(in.Role)
	if err != nil {
		return models.User{}, err
	}
	if role == access.RoleSales && !sales.IsSalesEmail(email) {
		return models.User{}, eris.Errorf("%s is not listed in SALES_EMAILS", email)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, eris.Wrap(err, "hash password")
	}

	user, err := users.Create(ctx, repository.NewUser{
		Email:        email,
		PasswordHash: hash,
		FirstName:    optionalName(in.FirstName),
		LastName:     optionalName(in.LastName),
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return models.User{}, eris.Errorf("user %s already exists", email)
		}
		return models.User{}, err
	}
	return user, nil
}

func optionalName(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func init() {
	flags := createUserCmd.Flags()
	flags.StringVar(&createUserFlags.email, "email", "", "account email")
	flags.StringVar(&createUserFlags.password, "password", "", "account password")
	flags.StringVar(&createUserFlags.firstName, "first-name", "", "first name")
	flags.StringVar(&createUserFlags.lastName, "last-name", "", "last name")
	flags.StringVar(&createUserFlags.role, "role", string(access.RoleUser), "user or sales")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(createUserCmd)
}
