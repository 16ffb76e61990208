// Package sheets builds authenticated Google Sheets API clients for the
// gsheets source and destination.
package sheets

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/ajitpratap0/strata/pkg/clients"
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/errors"
)

// CredentialsEnv names the variable consulted when no credentials file is
// configured, before falling back to application default credentials.
const CredentialsEnv = "GOOGLE_APPLICATION_CREDENTIALS"

// HTTPConfig derives the rate limit and retry settings of a Sheets client.
func HTTPConfig(cfg config.GoogleSheetsConfig) clients.HTTPConfig {
	hc := clients.DefaultHTTPConfig()
	hc.RequestsPerMinute = cfg.RequestsPerMinute
	hc.MaxRetries = cfg.MaxRetries
	return hc
}

// NewService creates a Sheets client whose requests are throttled and
// retried per HTTPConfig. An Endpoint override disables authentication,
// which is how tests point the client at a local server.
func NewService(ctx context.Context, cfg config.GoogleSheetsConfig, readOnly bool, log *zap.Logger) (*sheetsapi.Service, error) {
	scope := sheetsapi.SpreadsheetsScope
	if readOnly {
		scope = sheetsapi.SpreadsheetsReadonlyScope
	}
	hc := clients.NewHTTPClient(nil, HTTPConfig(cfg), log)

	var creds *google.Credentials
	switch {
	case cfg.Endpoint != "":
		svc, err := sheetsapi.NewService(ctx, option.WithEndpoint(cfg.Endpoint), option.WithHTTPClient(hc))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to create Sheets client")
		}
		return svc, nil
	case cfg.CredentialsFile != "" || os.Getenv(CredentialsEnv) != "":
		path := cfg.CredentialsFile
		if path == "" {
			path = os.Getenv(CredentialsEnv)
		}
		data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the pipeline definition
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read Google credentials")
		}
		if creds, err = google.CredentialsFromJSON(ctx, data, scope); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid Google credentials")
		}
	default:
		var err error
		if creds, err = google.FindDefaultCredentials(ctx, scope); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConnection, "no Google credentials configured")
		}
	}

	// The oauth2 transport signs requests on top of the throttled client.
	authed := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, hc), creds.TokenSource)
	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(authed))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to create Sheets client")
	}
	return svc, nil
}

// Cell converts a value returned by the API into a table scalar. The API
// has no null, so empty strings read as null.
func Cell(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "" {
			return nil
		}
		return x
	case float64:
		if x == float64(int64(x)) {
			return int64(x)
		}
		return x
	default:
		return x
	}
}

// A1 quotes a tab title for use as an A1 range.
func A1(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
