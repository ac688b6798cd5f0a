package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/vibast-solutions/go-donation-client/app/entity"
)

var (
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
	panPattern    = regexp.MustCompile(`^[A-Z]{5}\d{4}[A-Z]$`)
)

var ErrValidation = errors.New("validation failed")

// Error is a blocking, locally recovered validation failure.
type Error struct {
	Field   Field
	Title   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error {
	return ErrValidation
}

const TitleDetailsRequired = "Details Required"

// NormalizeIntent trims donor fields and upper-cases the PAN in place.
func NormalizeIntent(intent *entity.DonationIntent) {
	intent.DonorName = strings.TrimSpace(intent.DonorName)
	intent.DonorMobile = strings.ReplaceAll(strings.TrimSpace(intent.DonorMobile), " ", "")
	intent.DonorEmail = strings.TrimSpace(intent.DonorEmail)
	intent.DonorAddress = strings.TrimSpace(intent.DonorAddress)
	intent.DonorPAN = strings.ToUpper(strings.TrimSpace(intent.DonorPAN))
}

// ValidateIntent checks intent against tier and returns the first blocking *Error.
func ValidateIntent(intent *entity.DonationIntent, tier Tier) error {
	if tier.Blocked {
		return &Error{Field: FieldAmount, Title: "Invalid Amount", Message: "Enter a valid donation amount greater than zero."}
	}
	if tier.Conflict {
		return &Error{
			Field:   FieldName,
			Title:   TitleDetailsRequired,
			Message: fmt.Sprintf("Donations above ₹%s need your name, mobile number and PAN. Anonymous donation is not available for this amount.", formatAmount(tier.Threshold)),
		}
	}

	if intent.IsAnonymous {
		return nil
	}

	if tier.Required.Has(FieldName) && intent.DonorName == "" {
		return &Error{Field: FieldName, Title: TitleDetailsRequired, Message: "Please enter your full name."}
	}
	if tier.Required.Has(FieldMobile) && intent.DonorMobile == "" {
		return &Error{Field: FieldMobile, Title: TitleDetailsRequired, Message: "Please enter your mobile number."}
	}
	if intent.DonorMobile != "" && !mobilePattern.MatchString(intent.DonorMobile) {
		return &Error{Field: FieldMobile, Title: "Invalid Mobile", Message: "Mobile number must be 10 digits."}
	}
	if tier.Required.Has(FieldPAN) && intent.DonorPAN == "" {
		return &Error{Field: FieldPAN, Title: TitleDetailsRequired, Message: "PAN is required for this donation amount."}
	}
	if intent.DonorPAN != "" && !panPattern.MatchString(intent.DonorPAN) {
		return &Error{Field: FieldPAN, Title: "Invalid PAN", Message: "PAN must look like ABCDE1234F."}
	}
	if intent.DonorEmail != "" {
		if _, err := mail.ParseAddress(intent.DonorEmail); err != nil {
			return &Error{Field: FieldEmail, Title: "Invalid Email", Message: "Please enter a valid email address."}
		}
	}

	return nil
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
