package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"github.com/drewfead/daybook/internal/config"
	"github.com/drewfead/daybook/internal/planner"
)

// ClientFor returns an authenticated HTTP client for the account. Service
// account credentials authenticate on their own; OAuth client credentials
// need a token from a previous Login. Missing credentials or a missing
// token yield a *planner.AuthError rather than starting an interactive
// flow.
func ClientFor(ctx context.Context, account planner.AccountKind) (*http.Client, error) {
	credentialsPath, err := config.GetCredentialsPath(account)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, &planner.AuthError{
			Account: account,
			Err:     fmt.Errorf("no credentials at %s: %w", credentialsPath, err),
		}
	}

	credType, err := DetectCredentialType(data)
	if err != nil {
		return nil, &planner.AuthError{Account: account, Err: err}
	}

	switch credType {
	case CredentialTypeServiceAccount:
		// Service accounts don't need token refresh - they generate tokens on demand
		jwtConfig, err := google.JWTConfigFromJSON(data, calendar.CalendarReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		return jwtConfig.Client(ctx), nil

	case CredentialTypeOAuthClient:
		oauthConfig, err := google.ConfigFromJSON(data, calendar.CalendarReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
		}

		tokenPath, err := config.GetTokenPath(account)
		if err != nil {
			return nil, err
		}
		tok, err := LoadToken(tokenPath)
		if err != nil {
			return nil, &planner.AuthError{
				Account: account,
				Err:     fmt.Errorf("account not linked, run 'daybook login --account %s': %w", account, err),
			}
		}
		return oauthConfig.Client(ctx, tok), nil

	default:
		return nil, &planner.AuthError{
			Account: account,
			Err:     fmt.Errorf("unsupported credential type in %s", credentialsPath),
		}
	}
}

// Login links the account: for OAuth client credentials it runs the
// browser flow and saves the token; service accounts need no linking.
func Login(ctx context.Context, account planner.AccountKind) error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	credentialsPath, err := config.GetCredentialsPath(account)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return fmt.Errorf("unable to read credentials file: %w", err)
	}

	credType, err := DetectCredentialType(data)
	if err != nil {
		return err
	}
	if credType == CredentialTypeServiceAccount {
		// Nothing to link: the key authenticates by itself.
		return nil
	}

	oauthConfig, err := google.ConfigFromJSON(data, calendar.CalendarReadonlyScope)
	if err != nil {
		return fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	tok, err := GetTokenFromWeb(ctx, oauthConfig)
	if err != nil {
		return fmt.Errorf("unable to get token from web: %w", err)
	}

	tokenPath, err := config.GetTokenPath(account)
	if err != nil {
		return err
	}
	if err := SaveToken(tokenPath, tok); err != nil {
		return fmt.Errorf("unable to save token: %w", err)
	}

	return nil
}

// Logout unlinks the account by removing its saved token.
func Logout(account planner.AccountKind) error {
	tokenPath, err := config.GetTokenPath(account)
	if err != nil {
		return err
	}
	return RemoveToken(tokenPath)
}
