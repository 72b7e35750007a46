package web

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/trailhunt/internal/platform/errors"
	"github.com/louisbranch/trailhunt/internal/services/hunt/domain"
)

// teamPassCookieName carries the signed team identity between visits.
const teamPassCookieName = "hunt_team_pass"

const (
	defaultTeamPassIssuer   = "trailhunt"
	defaultTeamPassAudience = "hunt-web"
	defaultTeamPassTTL      = 30 * 24 * time.Hour
)

// TeamPassConfig defines how team passes are signed and verified.
type TeamPassConfig struct {
	Issuer   string
	Audience string
	Key      ed25519.PrivateKey
	TTL      time.Duration
	Now      func() time.Time
}

// TeamPass signs and verifies the cookie that stands in for a login.
// Possession of a valid pass is the only credential a team has.
type TeamPass struct {
	issuer   string
	audience string
	private  ed25519.PrivateKey
	public   ed25519.PublicKey
	ttl      time.Duration
	now      func() time.Time
}

// TeamPassClaims captures the validated identity carried by a pass.
type TeamPassClaims struct {
	TeamName string
	Group    domain.Group
}

// teamPassClaims is the internal claims type used for JWT parsing.
type teamPassClaims struct {
	jwt.RegisteredClaims
	TeamName string `json:"team_name"`
	Group    string `json:"group"`
}

// NewTeamPass builds a pass signer, applying defaults for unset fields.
func NewTeamPass(cfg TeamPassConfig) (*TeamPass, error) {
	if len(cfg.Key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("team pass key must be %d bytes", ed25519.PrivateKeySize)
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = defaultTeamPassIssuer
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = defaultTeamPassAudience
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTeamPassTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &TeamPass{
		issuer:   issuer,
		audience: audience,
		private:  cfg.Key,
		public:   cfg.Key.Public().(ed25519.PublicKey),
		ttl:      ttl,
		now:      now,
	}, nil
}

// GenerateTeamPassKey creates a fresh signing key. Single-process
// deployments may run on an ephemeral key; every restart then re-prompts
// registration, which the stale-identity path absorbs.
func GenerateTeamPassKey() (ed25519.PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate team pass key: %w", err)
	}
	return key, nil
}

// Issue signs a pass for a registered team.
func (p *TeamPass) Issue(team domain.Team) (string, error) {
	issuedAt := p.now().UTC()
	claims := teamPassClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(p.ttl)),
		},
		TeamName: team.Name,
		Group:    string(team.Group),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(p.private)
	if err != nil {
		return "", fmt.Errorf("sign team pass: %w", err)
	}
	return token, nil
}

// Verify checks a pass and returns the identity it carries.
func (p *TeamPass) Verify(token string) (TeamPassClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return TeamPassClaims{}, apperrors.New(apperrors.CodeTeamPassInvalid, "team pass is required")
	}

	var parsed teamPassClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return p.public, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return TeamPassClaims{}, mapJWTError(err)
	}

	if parsed.Issuer != p.issuer {
		return TeamPassClaims{}, apperrors.New(apperrors.CodeTeamPassInvalid, "team pass issuer mismatch")
	}
	if !audienceContains(parsed.Audience, p.audience) {
		return TeamPassClaims{}, apperrors.New(apperrors.CodeTeamPassInvalid, "team pass audience mismatch")
	}
	if parsed.ExpiresAt == nil {
		return TeamPassClaims{}, apperrors.New(apperrors.CodeTeamPassInvalid, "team pass exp is required")
	}
	if !parsed.ExpiresAt.Time.UTC().After(p.now().UTC()) {
		return TeamPassClaims{}, apperrors.New(apperrors.CodeTeamPassInvalid, "team pass is expired")
	}
	if strings.TrimSpace(parsed.TeamName) == "" {
		return TeamPassClaims{}, apperrors.New(apperrors.CodeTeamPassInvalid, "team pass carries no team")
	}

	return TeamPassClaims{
		TeamName: parsed.TeamName,
		Group:    domain.Group(parsed.Group),
	}, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeTeamPassInvalid, "team pass signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeTeamPassInvalid, "team pass alg is invalid")
	}
	return apperrors.New(apperrors.CodeTeamPassInvalid, "team pass is invalid")
}

// audienceContains reports whether the audience list contains the value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func setTeamPassCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     teamPassCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearTeamPassCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     teamPassCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
