// Package accounts implements registration and the account operations that
// sit between the HTTP handlers and the store.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"USER_REGISTRATION_BACK-END/internal/config"
	"USER_REGISTRATION_BACK-END/internal/dto"
	"USER_REGISTRATION_BACK-END/internal/metrics"
	"USER_REGISTRATION_BACK-END/internal/models"
	"USER_REGISTRATION_BACK-END/internal/store"
)

// Mailer delivers account e-mails.
type Mailer interface {
	SendEmailConfirmation(to, username, key string) error
}

// Service orchestrates registration, authentication and profile updates.
type Service struct {
	store    store.Store
	mailer   Mailer
	cfg      config.AccountConfig
	policy   PasswordPolicy
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	hashCost int
}

// NewService creates an account service. mailer may be nil, in which case
// confirmation e-mails are logged and skipped.
func NewService(st store.Store, mailer Mailer, cfg config.AccountConfig, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    st,
		mailer:   mailer,
		cfg:      cfg,
		policy:   PasswordPolicy{MinLength: cfg.PasswordMinLength},
		logger:   logger,
		metrics:  m,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

// SetHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *Service) SetHashCost(cost int) {
	s.hashCost = cost
}

// VerificationMandatory reports whether login requires a verified address.
func (s *Service) VerificationMandatory() bool {
	return s.cfg.EmailVerification == config.EmailVerificationMandatory
}

type registration struct {
	username  string
	email     string
	password  string
	firstName string
	lastName  string
	profile   models.Profile
}

func (s *Service) validateRegistration(ctx context.Context, req dto.RegisterRequest) (*registration, error) {
	verr := &ValidationError{}
	out := &registration{}

	username, msgs, err := s.cleanUsername(ctx, req.Username, 0)
	if err != nil {
		return nil, err
	}
	out.username = username
	verr.Add("username", msgs...)

	email, msgs, err := s.cleanEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	out.email = email
	verr.Add("email", msgs...)

	out.firstName = requiredName(verr, "first_name", req.FirstName)
	out.lastName = requiredName(verr, "last_name", req.LastName)

	if req.Password1 == "" {
		verr.Add("password1", msgBlank)
	} else {
		// No account exists yet, so attribute similarity is only checked
		// when an existing user picks a new password.
		verr.Add("password1", s.policy.Validate(req.Password1)...)
	}
	if req.Password2 == "" {
		verr.Add("password2", msgBlank)
	}

	profile, detailErrs := ValidateUserDetails(req.UserDetails, nil, false)
	out.profile = profile
	verr.Merge(detailErrs)

	if verr.HasErrors() {
		return nil, verr
	}

	if req.Password1 != req.Password2 {
		return nil, nonFieldError(msgPasswordMismatch)
	}
	out.password = req.Password1
	return out, nil
}

// Register validates req and creates the profile, the user, the link
// between them and the primary e-mail address in one transaction. A
// confirmation e-mail is sent after commit unless verification is disabled.
func (s *Service) Register(ctx context.Context, req dto.RegisterRequest) (*models.UserWithProfile, error) {
	reg, err := s.validateRegistration(ctx, req)
	if err != nil {
		s.metrics.Registration(outcomeOf(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.password), s.hashCost)
	if err != nil {
		s.metrics.Registration(metrics.OutcomeError)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var (
		result       models.UserWithProfile
		confirmation *models.EmailConfirmation
	)
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		profile := reg.profile
		if err := tx.CreateProfile(ctx, &profile); err != nil {
			return nonFieldError(msgDetailsProblem + err.Error())
		}

		user := models.User{
			Username:     reg.username,
			Email:        reg.email,
			PasswordHash: string(hash),
			FirstName:    reg.firstName,
			LastName:     reg.lastName,
			IsActive:     true,
			DateJoined:   s.now().UTC(),
		}
		if err := tx.CreateUser(ctx, &user); err != nil {
			if errors.Is(err, store.ErrUsernameTaken) {
				return fieldError("username", msgUsernameTaken)
			}
			return fmt.Errorf("create user: %w", err)
		}

		user.ProfileID = &profile.ID
		if err := tx.UpdateUser(ctx, &user); err != nil {
			return fmt.Errorf("link user details: %w", err)
		}

		c, err := s.setupUserEmail(ctx, tx, &user)
		if err != nil {
			return err
		}

		result = models.UserWithProfile{User: user, Profile: &profile}
		confirmation = c
		return nil
	})
	if err != nil {
		s.metrics.Registration(outcomeOf(err))
		return nil, err
	}

	if confirmation != nil {
		s.sendConfirmation(ctx, &result.User, confirmation)
	}

	s.metrics.Registration(metrics.OutcomeSuccess)
	s.logger.Info("user registered",
		zap.Int64("user_id", result.ID),
		zap.String("username", result.Username),
	)
	return &result, nil
}

// setupUserEmail records the user's address as primary and, unless
// verification is disabled, creates a confirmation for it.
func (s *Service) setupUserEmail(ctx context.Context, tx store.Store, user *models.User) (*models.EmailConfirmation, error) {
	if user.Email == "" {
		return nil, nil
	}

	addr := &models.EmailAddress{UserID: user.ID, Email: user.Email, Primary: true}
	if err := tx.AddEmailAddress(ctx, addr); err != nil {
		return nil, fmt.Errorf("add email address: %w", err)
	}
	if s.cfg.EmailVerification == config.EmailVerificationNone {
		return nil, nil
	}

	c := &models.EmailConfirmation{EmailAddressID: addr.ID, CreatedAt: s.now().UTC()}
	if err := tx.CreateEmailConfirmation(ctx, c); err != nil {
		return nil, fmt.Errorf("create email confirmation: %w", err)
	}
	c.Address = *addr
	return c, nil
}

func (s *Service) sendConfirmation(ctx context.Context, user *models.User, c *models.EmailConfirmation) {
	if s.mailer == nil {
		s.logger.Warn("mailer not configured, skipping confirmation e-mail", zap.Int64("user_id", user.ID))
		return
	}
	if err := s.mailer.SendEmailConfirmation(c.Address.Email, user.Username, c.Key.String()); err != nil {
		s.metrics.EmailSent("confirmation", metrics.OutcomeError)
		s.logger.Error("failed to send confirmation e-mail", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	s.metrics.EmailSent("confirmation", metrics.OutcomeSuccess)
	if err := s.store.MarkConfirmationSent(ctx, c.Key); err != nil {
		s.logger.Error("failed to mark confirmation sent", zap.Stringer("key", c.Key), zap.Error(err))
	}
}

// ConfirmEmail verifies the address behind key.
func (s *Service) ConfirmEmail(ctx context.Context, key string) error {
	k, err := uuid.Parse(strings.TrimSpace(key))
	if err != nil {
		return ErrConfirmationInvalid
	}
	c, err := s.store.GetEmailConfirmation(ctx, k)
	if err != nil {
		if isNotFound(err) {
			return ErrConfirmationInvalid
		}
		return fmt.Errorf("get confirmation: %w", err)
	}
	if c.Expired(s.now(), s.cfg.EmailConfirmationExpire) {
		return ErrConfirmationExpired
	}
	if err := s.store.VerifyEmailAddress(ctx, c.EmailAddressID); err != nil {
		return fmt.Errorf("verify email address: %w", err)
	}
	s.logger.Info("e-mail confirmed", zap.Int64("user_id", c.Address.UserID))
	return nil
}

// Authenticate checks credentials. identifier is a username, or an e-mail
// address when it contains "@". On success last_login is updated.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		s.metrics.Login(metrics.OutcomeInvalid)
		return nil, ErrMissingCredentials
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.store.GetUserByEmail(ctx, identifier)
	} else {
		user, err = s.store.GetUserByUsername(ctx, normalizeUsername(identifier))
	}
	if err != nil {
		if isNotFound(err) {
			s.metrics.Login(metrics.OutcomeRejected)
			return nil, ErrInvalidCredentials
		}
		s.metrics.Login(metrics.OutcomeError)
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.HasUsablePassword() || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.metrics.Login(metrics.OutcomeRejected)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.metrics.Login(metrics.OutcomeRejected)
		return nil, ErrInactiveUser
	}

	if s.VerificationMandatory() {
		addr, err := s.store.PrimaryEmailAddress(ctx, user.ID)
		if err != nil && !isNotFound(err) {
			s.metrics.Login(metrics.OutcomeError)
			return nil, fmt.Errorf("primary email: %w", err)
		}
		if addr != nil && !addr.Verified {
			s.metrics.Login(metrics.OutcomeRejected)
			return nil, ErrEmailNotVerified
		}
	}

	now := s.now().UTC()
	if err := s.store.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.metrics.Login(metrics.OutcomeError)
		return nil, fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now

	s.metrics.Login(metrics.OutcomeSuccess)
	return user, nil
}

// UpdateUser applies req to the user. With partial set only the fields
// present in req change. A missing profile is created on first update.
func (s *Service) UpdateUser(ctx context.Context, userID int64, req dto.UserUpdateRequest, partial bool) (*models.UserWithProfile, error) {
	current, err := s.store.GetUserWithProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	user := current.User

	switch {
	case req.Username != nil:
		username, msgs, err := s.cleanUsername(ctx, *req.Username, userID)
		if err != nil {
			return nil, err
		}
		verr.Add("username", msgs...)
		user.Username = username
	case !partial:
		verr.Add("username", msgRequired)
	}

	if req.FirstName != nil {
		name, msgs := cleanName(*req.FirstName)
		verr.Add("first_name", msgs...)
		user.FirstName = name
	}
	if req.LastName != nil {
		name, msgs := cleanName(*req.LastName)
		verr.Add("last_name", msgs...)
		user.LastName = name
	}

	profile, detailErrs := ValidateUserDetails(req.UserDetails, current.Profile, partial)
	verr.Merge(detailErrs)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if req.UserDetails != nil {
			if current.Profile == nil {
				if err := tx.CreateProfile(ctx, &profile); err != nil {
					return nonFieldError(msgDetailsProblem + err.Error())
				}
				user.ProfileID = &profile.ID
			} else if err := tx.UpdateProfile(ctx, &profile); err != nil {
				return fmt.Errorf("update user details: %w", err)
			}
		}
		if err := tx.UpdateUser(ctx, &user); err != nil {
			if errors.Is(err, store.ErrUsernameTaken) {
				return fieldError("username", msgUsernameTaken)
			}
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.store.GetUserWithProfile(ctx, userID)
}

// ChangePassword replaces the password after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, req dto.PasswordChangeRequest) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasUsablePassword() || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		return fieldError("old_password", msgOldPassword)
	}
	return s.SetPassword(ctx, user, req.NewPassword1, req.NewPassword2)
}

// SetPassword validates and stores a new password for user.
func (s *Service) SetPassword(ctx context.Context, user *models.User, password1, password2 string) error {
	hash, err := s.newPasswordHash(user, password1, password2)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	user.PasswordHash = hash
	s.logger.Info("password changed", zap.Int64("user_id", user.ID))
	return nil
}

// ResetPassword stores a new password and consumes the reset code in one
// transaction.
func (s *Service) ResetPassword(ctx context.Context, userID int64, verificationID uuid.UUID, password1, password2 string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := s.newPasswordHash(user, password1, password2)
	if err != nil {
		return err
	}
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := tx.MarkVerificationUsed(ctx, verificationID); err != nil {
			return fmt.Errorf("mark code used: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("password reset", zap.Int64("user_id", user.ID))
	return nil
}

func (s *Service) newPasswordHash(user *models.User, password1, password2 string) (string, error) {
	verr := &ValidationError{}
	if password1 == "" {
		verr.Add("new_password1", msgRequired)
	}
	if password2 == "" {
		verr.Add("new_password2", msgRequired)
	}
	if err := verr.Err(); err != nil {
		return "", err
	}
	if password1 != password2 {
		return "", fieldError("new_password2", msgPasswordMismatch)
	}
	attrs := userAttributes(user.Username, user.Email, user.FirstName, user.LastName)
	if msgs := s.policy.Validate(password2, attrs...); len(msgs) > 0 {
		verr.Add("new_password2", msgs...)
		return "", verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password1), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

var usernameStrip = regexp.MustCompile(`[^\p{L}\p{N}_.+-]+`)

// SocialSignup returns the account for a Google identity, creating one with
// an unusable password when the address is unknown.
func (s *Service) SocialSignup(ctx context.Context, info dto.GoogleUserInfo) (*models.User, bool, error) {
	email := strings.TrimSpace(info.Email)
	if email == "" {
		return nil, false, ErrSocialEmailMissing
	}
	email = normalizeEmail(email)

	existing, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if !info.Verified {
			s.logger.Warn("social login refused for unverified address", zap.Int64("user_id", existing.ID))
			return nil, false, ErrSocialEmailUnverified
		}
		if !existing.IsActive {
			return nil, false, ErrInactiveUser
		}
		return existing, false, nil
	case !isNotFound(err):
		return nil, false, fmt.Errorf("lookup user: %w", err)
	}

	local, _, _ := strings.Cut(email, "@")
	username, err := s.availableUsername(ctx, local)
	if err != nil {
		return nil, false, err
	}

	firstName, lastName := info.GivenName, info.FamilyName
	if firstName == "" && lastName == "" {
		firstName, lastName, _ = strings.Cut(strings.TrimSpace(info.Name), " ")
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: models.UnusablePasswordPrefix + uuid.NewString(),
		FirstName:    truncate(firstName, nameMaxLength),
		LastName:     truncate(lastName, nameMaxLength),
		IsActive:     true,
		DateJoined:   s.now().UTC(),
	}
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		addr := &models.EmailAddress{UserID: user.ID, Email: email, Primary: true, Verified: info.Verified}
		if err := tx.AddEmailAddress(ctx, addr); err != nil {
			return fmt.Errorf("add email address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	s.metrics.Registration(metrics.OutcomeSuccess)
	s.logger.Info("user registered via google", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, true, nil
}

func (s *Service) availableUsername(ctx context.Context, local string) (string, error) {
	base := usernameStrip.ReplaceAllString(normalizeUsername(local), "")
	if base == "" {
		base = "user"
	}
	base = truncate(base, s.cfg.UsernameMaxLength)

	candidate := base
	for i := 2; ; i++ {
		exists, err := s.store.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		suffix := strconv.Itoa(i)
		candidate = truncate(base, s.cfg.UsernameMaxLength-len(suffix)) + suffix
	}
}

func requiredName(verr *ValidationError, field, raw string) string {
	name, msgs := cleanName(raw)
	if len(msgs) == 0 && name == "" {
		msgs = []string{msgBlank}
	}
	verr.Add(field, msgs...)
	return name
}

func outcomeOf(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
