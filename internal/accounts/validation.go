package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"USER_REGISTRATION_BACK-END/internal/dto"
	"USER_REGISTRATION_BACK-END/internal/models"
)

const nameMaxLength = 150

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

	// Local parts follow RFC 5322: a dot-atom or a quoted string.
	emailDotAtom = regexp.MustCompile("(?i)^[-!#$%&'*+/=?^_`{}|~0-9a-z]+(\\.[-!#$%&'*+/=?^_`{}|~0-9a-z]+)*$")
	emailQuoted  = regexp.MustCompile(`^"([\x01-\x08\x0b\x0c\x0e-\x1f!#-\[\]-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])*"$`)
	emailDomain  = regexp.MustCompile(`(?i)^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z0-9-]{1,62}[a-z0-9]$`)

	isoDate = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	// trailingZeroFraction lets "12.0" and "12." count as integers.
	trailingZeroFraction = regexp.MustCompile(`\.0*\s*$`)
)

// cleanUsername normalises and validates a username. exceptUserID excludes
// the caller's own account from the uniqueness check on updates.
func (s *Service) cleanUsername(ctx context.Context, raw string, exceptUserID int64) (string, []string, error) {
	username := normalizeUsername(raw)
	if username == "" {
		return "", []string{msgBlank}, nil
	}

	n := utf8.RuneCountInString(username)
	switch {
	case n > s.cfg.UsernameMaxLength:
		return "", []string{fmt.Sprintf("Ensure this field has no more than %d characters.", s.cfg.UsernameMaxLength)}, nil
	case n < s.cfg.UsernameMinLength:
		return "", []string{fmt.Sprintf("Ensure this field has at least %d characters.", s.cfg.UsernameMinLength)}, nil
	case !usernamePattern.MatchString(username):
		return "", []string{msgUsernameInvalid}, nil
	}

	if exceptUserID == 0 {
		exists, err := s.store.UsernameExists(ctx, username)
		if err != nil {
			return "", nil, fmt.Errorf("check username: %w", err)
		}
		if exists {
			return "", []string{msgUsernameTaken}, nil
		}
		return username, nil, nil
	}

	other, err := s.store.GetUserByUsername(ctx, username)
	switch {
	case isNotFound(err):
		return username, nil, nil
	case err != nil:
		return "", nil, fmt.Errorf("check username: %w", err)
	case other.ID != exceptUserID:
		return "", []string{msgUsernameTaken}, nil
	}
	return username, nil, nil
}

func validEmail(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	local, domain := email[:at], email[at+1:]
	if !emailDotAtom.MatchString(local) && !emailQuoted.MatchString(local) {
		return false
	}
	if strings.EqualFold(domain, "localhost") || emailDomain.MatchString(domain) {
		return true
	}
	if literal, ok := strings.CutPrefix(domain, "["); ok {
		literal, ok = strings.CutSuffix(literal, "]")
		if !ok {
			return false
		}
		addr, err := netip.ParseAddr(strings.TrimPrefix(literal, "IPv6:"))
		return err == nil && addr.Zone() == ""
	}
	return false
}

func normalizeUsername(raw string) string {
	return norm.NFKC.String(strings.TrimSpace(raw))
}

// cleanEmail validates an address and lower-cases its domain part.
func (s *Service) cleanEmail(ctx context.Context, raw string) (string, []string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", []string{msgBlank}, nil
	}
	if !validEmail(email) {
		return "", []string{msgEmailInvalid}, nil
	}
	email = normalizeEmail(email)

	if s.cfg.UniqueEmail {
		exists, err := s.store.EmailExists(ctx, email)
		if err != nil {
			return "", nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return "", []string{msgEmailTaken}, nil
		}
	}
	return email, nil, nil
}

func normalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

func cleanName(raw string) (string, []string) {
	name := strings.TrimSpace(raw)
	if utf8.RuneCountInString(name) > nameMaxLength {
		return "", []string{fmt.Sprintf("Ensure this field has no more than %d characters.", nameMaxLength)}
	}
	return name, nil
}

// ValidateUserDetails turns a user_details payload into a Profile.
//
// base is the current profile, if any. With partial set, absent keys keep
// their value from base; otherwise date_of_birth and mobile_no are required
// and an absent extra_phone is stored as null. Errors are keyed with the
// user_details. prefix.
func ValidateUserDetails(p *dto.UserDetailsPayload, base *models.Profile, partial bool) (models.Profile, map[string][]string) {
	var out models.Profile
	if base != nil {
		out = *base
	}
	errs := map[string][]string{}
	keep := partial && base != nil

	if p == nil {
		if keep {
			return out, nil
		}
		errs["user_details"] = []string{msgRequired}
		return out, errs
	}

	switch {
	case p.DateOfBirth != nil:
		dob, err := parseDate(*p.DateOfBirth)
		if err != nil {
			errs["user_details.date_of_birth"] = []string{msgDateFormat}
		} else {
			out.DateOfBirth = dob
		}
	case !keep:
		errs["user_details.date_of_birth"] = []string{msgRequired}
	}

	switch {
	case p.MobileNo != nil:
		n, msg := parseInt32(*p.MobileNo)
		if msg != "" {
			errs["user_details.mobile_no"] = []string{msg}
		} else {
			out.MobileNo = n
		}
	case !keep:
		errs["user_details.mobile_no"] = []string{msgRequired}
	}

	switch {
	case p.ExtraPhone != nil:
		if string(p.ExtraPhone) == "null" {
			out.ExtraPhone = nil
		} else {
			out.ExtraPhone = append(json.RawMessage(nil), p.ExtraPhone...)
		}
	case !keep:
		out.ExtraPhone = nil
	}

	if len(errs) > 0 {
		return out, errs
	}
	return out, nil
}

// parseDate accepts YYYY-MM-DD with one- or two-digit month and day.
func parseDate(raw string) (time.Time, error) {
	m := isoDate.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return time.Time{}, errors.New("not a date")
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("day out of range: %s", m[0])
	}
	return t, nil
}

func parseInt32(n json.Number) (int32, string) {
	raw := trailingZeroFraction.ReplaceAllString(strings.TrimSpace(n.String()), "")
	v, err := strconv.ParseInt(raw, 10, 64)
	switch {
	case errors.Is(err, strconv.ErrRange) && strings.HasPrefix(raw, "-"):
		v = math.MinInt64
	case errors.Is(err, strconv.ErrRange):
		v = math.MaxInt64
	case err != nil:
		return 0, msgIntegerInvalid
	}
	switch {
	case v > math.MaxInt32:
		return 0, fmt.Sprintf("Ensure this value is less than or equal to %d.", math.MaxInt32)
	case v < math.MinInt32:
		return 0, fmt.Sprintf("Ensure this value is greater than or equal to %d.", math.MinInt32)
	}
	return int32(v), ""
}

func userAttributes(username, email, firstName, lastName string) []UserAttribute {
	return []UserAttribute{
		{Name: "username", Value: username},
		{Name: "email address", Value: email},
		{Name: "first name", Value: firstName},
		{Name: "last name", Value: lastName},
	}
}
