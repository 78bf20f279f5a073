// internal/mail/gmail.go
package mail

import (
    "context"
    "fmt"
    "os"

    "golang.org/x/oauth2"
    "golang.org/x/oauth2/google"
    "google.golang.org/api/gmail/v1"
    "google.golang.org/api/option"

    appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
)

// GmailConfig holds the OAuth2 client credentials plus a refresh token for
// the operator's mailbox.
type GmailConfig struct {
    ClientID     string
    ClientSecret string
    RefreshToken string
}

// GmailConfigFromEnv reads GMAIL_CLIENT_ID, GMAIL_CLIENT_SECRET and
// GMAIL_REFRESH_TOKEN.
func GmailConfigFromEnv() GmailConfig {
    return GmailConfig{
        ClientID:     os.Getenv("GMAIL_CLIENT_ID"),
        ClientSecret: os.Getenv("GMAIL_CLIENT_SECRET"),
        RefreshToken: os.Getenv("GMAIL_REFRESH_TOKEN"),
    }
}

// GmailTransport implements Transport using the Gmail API.
type GmailTransport struct {
    service *gmail.Service
}

// NewGmailTransport builds an authenticated Gmail client. Failure here is
// fatal for a dispatch run: no transport, no run.
func NewGmailTransport(ctx context.Context, cfg GmailConfig) (*GmailTransport, error) {
    if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
        return nil, appErrors.NewAuthentication(fmt.Errorf("gmail credentials are not configured"))
    }

    oauthCfg := &oauth2.Config{
        ClientID:     cfg.ClientID,
        ClientSecret: cfg.ClientSecret,
        Endpoint:     google.Endpoint,
        Scopes:       []string{gmail.GmailSendScope, gmail.GmailReadonlyScope},
    }
    token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
    client := oauthCfg.Client(ctx, token)

    svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
    if err != nil {
        return nil, appErrors.NewAuthentication(err)
    }

    return &GmailTransport{service: svc}, nil
}

// OperatorEmail fetches the authenticated mailbox's address. Test mode
// redirects every send here.
func (g *GmailTransport) OperatorEmail(ctx context.Context) (string, error) {
    profile, err := g.service.Users.GetProfile("me").Context(ctx).Do()
    if err != nil {
        return "", appErrors.NewAuthentication(err)
    }
    return profile.EmailAddress, nil
}

// Send delivers one raw message through the Gmail API and returns the
// provider message id.
func (g *GmailTransport) Send(ctx context.Context, msg *TransportMessage) (string, error) {
    sent, err := g.service.Users.Messages.Send("me", &gmail.Message{Raw: msg.Raw}).Context(ctx).Do()
    if err != nil {
        return "", fmt.Errorf("gmail send failed: %w", err)
    }
    return sent.Id, nil
}

var _ Transport = (*GmailTransport)(nil)
