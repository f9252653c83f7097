package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"codecrafting/internal/auth"
	"codecrafting/internal/cache"
	apperrors "codecrafting/internal/errors"
	"codecrafting/internal/model"
	"codecrafting/internal/repository"
)

// WeakPasswordError carries every strength rule the candidate password
// violated.
type WeakPasswordError struct {
	Reasons []string
}

func (e *WeakPasswordError) Error() string {
	return apperrors.ErrWeakPassword.Error()
}

func (e *WeakPasswordError) Unwrap() error {
	return apperrors.ErrWeakPassword
}

// SignInRequest is the variant type over the two ways a session can be
// opened. Each variant is dispatched to its own policy and role-resolution
// path.
type SignInRequest interface {
	Provider() string
}

// CredentialsSignIn opens a session for an identity the credential
// authenticator has already validated.
type CredentialsSignIn struct {
	Identity auth.Identity
}

// Provider returns the provider name embedded in the session token.
func (CredentialsSignIn) Provider() string { return auth.ProviderCredentials }

// OAuthSignIn opens a session from a verified OAuth profile.
type OAuthSignIn struct {
	Profile OAuthProfile
}

// Provider returns the provider name embedded in the session token.
func (OAuthSignIn) Provider() string { return auth.ProviderGoogle }

// OAuthProfile is the subset of the provider's userinfo the core consumes.
type OAuthProfile struct {
	Subject string
	Email   string
	Name    string
}

// AuthService is the authentication core: credential verification,
// registration, OAuth sign-in policy and session issuance/refresh.
type AuthService interface {
	Authorize(ctx context.Context, email, password string) (*auth.Identity, error)
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	SignIn(ctx context.Context, req SignInRequest) (token string, identity *auth.Identity, err error)
	RefreshSession(ctx context.Context, claims *auth.SessionClaims) (string, error)
}

type authService struct {
	users         repository.UserRepository
	oauthAccounts repository.OAuthAccountRepository
	jwtService    *auth.JWTService
	roleMapping   *auth.RoleMapping
	cache         *cache.Client

	allowedDomains []string
	revalidateRole bool
}

// NewAuthService creates the authentication core. allowedDomains may be
// empty, in which case every OAuth email domain is accepted.
func NewAuthService(
	users repository.UserRepository,
	oauthAccounts repository.OAuthAccountRepository,
	jwtService *auth.JWTService,
	roleMapping *auth.RoleMapping,
	cacheClient *cache.Client,
	allowedDomains []string,
	revalidateRole bool,
) AuthService {
	return &authService{
		users:          users,
		oauthAccounts:  oauthAccounts,
		jwtService:     jwtService,
		roleMapping:    roleMapping,
		cache:          cacheClient,
		allowedDomains: allowedDomains,
		revalidateRole: revalidateRole,
	}
}

// Authorize validates an email/password pair against the store and returns
// the minimal identity on success. Every failure collapses into
// ErrInvalidCredentials; the caller must not learn whether the email
// exists, is OAuth-only, or the password was wrong.
func (s *authService) Authorize(ctx context.Context, email, password string) (*auth.Identity, error) {
	if email == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	// OAuth-only accounts have no hash to verify against.
	if !user.HasPassword() {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.VerifyPassword(password, *user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return &auth.Identity{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role.Normalized(),
	}, nil
}

// Register validates password strength, checks the store for conflicts and
// creates a new member account with a hashed password.
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	if strength := auth.ValidatePasswordStrength(password); !strength.Valid {
		return nil, &WeakPasswordError{Reasons: strength.Errors}
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		if existing.HasPassword() {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, apperrors.ErrEmailLinkedOAuth
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: &hash,
		Role:         model.RoleMember,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// SignIn enforces the sign-in policy for req, resolves the session role and
// issues a signed token.
func (s *authService) SignIn(ctx context.Context, req SignInRequest) (string, *auth.Identity, error) {
	var identity *auth.Identity
	var err error

	switch r := req.(type) {
	case CredentialsSignIn:
		// Credentials have already been rejected or validated by
		// Authorize; the identity's role is used verbatim.
		id := r.Identity
		identity = &id
	case OAuthSignIn:
		identity, err = s.oauthSignIn(ctx, r.Profile)
		if err != nil {
			return "", nil, err
		}
	default:
		return "", nil, fmt.Errorf("unsupported sign-in request %T", req)
	}

	token, err := s.jwtService.Issue(*identity, req.Provider())
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.cache.SetRole(ctx, identity.ID, model.Role(identity.Role))

	return token, identity, nil
}

// oauthSignIn applies the OAuth policy, upserts the user record and its
// provider link, and resolves the session role.
func (s *authService) oauthSignIn(ctx context.Context, profile OAuthProfile) (*auth.Identity, error) {
	if profile.Email == "" {
		return nil, apperrors.ErrSignInDenied
	}
	if !s.domainAllowed(profile.Email) {
		return nil, apperrors.ErrSignInDenied
	}

	email := strings.ToLower(profile.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user != nil {
		// An email that owns a password account must never be silently
		// merged with an OAuth identity.
		if user.HasPassword() {
			return nil, apperrors.ErrSignInDenied
		}
		return s.existingOAuthIdentity(ctx, user, profile)
	}

	// Brand-new OAuth user: role comes from the mapping table.
	role := s.roleMapping.RoleFor(email)
	user = &model.User{
		ID:    uuid.New(),
		Name:  profile.Name,
		Email: email,
		Role:  role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create oauth user: %w", err)
	}

	s.linkAccount(ctx, user.ID, profile.Subject)

	return &auth.Identity{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
		Role:  role.Normalized(),
	}, nil
}

// existingOAuthIdentity resolves the role for a returning OAuth user. The
// stored role is the source of truth; a read failure degrades to the
// mapping-table default with a warning rather than failing the sign-in.
func (s *authService) existingOAuthIdentity(ctx context.Context, user *model.User, profile OAuthProfile) (*auth.Identity, error) {
	role := user.Role

	// Persist the resolved role back; deliberately ignored on failure.
	if err := s.syncRole(ctx, user.ID, role); err != nil {
		log.Printf("warning: role sync for %s failed: %v", user.ID, err)
	}

	s.linkAccount(ctx, user.ID, profile.Subject)

	return &auth.Identity{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
		Role:  role.Normalized(),
	}, nil
}

// RefreshSession re-issues a token from verified claims. By default the
// embedded role is trusted for the lifetime of the session; when role
// revalidation is enabled the store is consulted and a failure there falls
// back to the embedded claim.
func (s *authService) RefreshSession(ctx context.Context, claims *auth.SessionClaims) (string, error) {
	if s.revalidateRole {
		if role, ok := s.currentRole(ctx, claims.UserID); ok {
			claims.Role = role
		}
	}
	return s.jwtService.Refresh(claims)
}

// currentRole resolves the user's present role, preferring the cache over
// a store read. A miss on both sides keeps the embedded claim.
func (s *authService) currentRole(ctx context.Context, userID string) (string, bool) {
	if cached := s.cache.GetRole(ctx, userID); cached != "" {
		return cached.Normalized(), true
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return "", false
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		log.Printf("warning: role revalidation for %s failed: %v", userID, err)
		return "", false
	}

	role := user.Role.Normalized()
	s.cache.SetRole(ctx, userID, user.Role)
	return role, true
}

// syncRole writes role onto the user record and drops the cached value.
// Callers treat a failure as non-fatal.
func (s *authService) syncRole(ctx context.Context, userID uuid.UUID, role model.Role) error {
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.cache.InvalidateRole(ctx, userID.String())
	return nil
}

// linkAccount records the provider link if it does not exist yet.
// Best-effort: a failure is logged, never fatal to the sign-in.
func (s *authService) linkAccount(ctx context.Context, userID uuid.UUID, providerAccountID string) {
	linked, err := s.oauthAccounts.HasLinkedAccount(ctx, userID, auth.ProviderGoogle)
	if err != nil {
		log.Printf("warning: oauth link lookup for %s failed: %v", userID, err)
		return
	}
	if linked {
		return
	}
	account := &model.OAuthAccount{
		ID:                uuid.New(),
		UserID:            userID,
		Provider:          auth.ProviderGoogle,
		ProviderAccountID: providerAccountID,
	}
	if err := s.oauthAccounts.Create(ctx, account); err != nil {
		log.Printf("warning: oauth link create for %s failed: %v", userID, err)
	}
}

func (s *authService) domainAllowed(email string) bool {
	if len(s.allowedDomains) == 0 {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, allowed := range s.allowedDomains {
		if strings.ToLower(allowed) == domain {
			return true
		}
	}
	return false
}
