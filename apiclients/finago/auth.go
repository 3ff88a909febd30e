package finago

import (
	"context"
	"fmt"
)

// AuthService wraps the authentication service: login with an integration
// credential, listing the identities (clients) available to the user, and
// scoping the session to one of them. The session token it yields is reused
// for every entity fetch in a sync run.
type AuthService struct {
	client *Client
}

// NewAuthService creates an AuthService over a client pointed at the
// authentication endpoint.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// Login authenticates the integration user and returns the session token.
// The token is also attached to the underlying client.
func (a *AuthService) Login(ctx context.Context, applicationID, username, password string) (string, error) {
	inner := fmt.Sprintf(`<Login xmlns="%s">
  <credential>
    <ApplicationId>%s</ApplicationId>
    <Username>%s</Username>
    <Password>%s</Password>
  </credential>
</Login>`, DefaultNS, applicationID, username, password)

	doc, err := a.client.Call(ctx, "Login", inner)
	if err != nil {
		return "", err
	}

	sessionID := StringOf(NodeOf(responseBody(doc), "LoginResponse"), "LoginResult")
	if sessionID == "" {
		return "", fmt.Errorf("login succeeded but no session token was returned")
	}
	if a.client.SessionID() == "" {
		a.client.SetSession(sessionID)
	}
	return sessionID, nil
}

// GetIdentities lists the identities (clients) selectable for the current
// session.
func (a *AuthService) GetIdentities(ctx context.Context) ([]Identity, error) {
	inner := fmt.Sprintf(`<GetIdentities xmlns="%s" />`, DefaultNS)

	doc, err := a.client.Call(ctx, "GetIdentities", inner)
	if err != nil {
		return nil, err
	}

	result := resultOf(doc, "GetIdentitiesResponse", "GetIdentitiesResult")
	var identities []Identity
	for _, item := range ListOf(result, "Identity") {
		client := NodeOf(item, "Client")
		user := NodeOf(item, "User")
		identities = append(identities, Identity{
			ID:       StringOf(item, "Id"),
			Name:     StringOf(client, "Name"),
			ClientID: StringOf(client, "Id"),
			UserName: StringOf(user, "Name"),
		})
	}
	return identities, nil
}

// SetIdentityByID scopes the session to the given identity. All subsequent
// entity fetches run against that client's data.
func (a *AuthService) SetIdentityByID(ctx context.Context, identityID string) error {
	inner := fmt.Sprintf(`<SetIdentityById xmlns="%s">
  <identityId>%s</identityId>
</SetIdentityById>`, DefaultNS, identityID)

	_, err := a.client.Call(ctx, "SetIdentityById", inner)
	return err
}
