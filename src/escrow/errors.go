package escrow

import (
	"errors"

	"github.com/veesr/escrow/src/ledger"
	"github.com/veesr/escrow/src/utils/address"
)

// Kind groups errors by what the caller can do about them
type Kind int

const (
	// Ledger failure, database down, context cancelled etc.
	KindInternal Kind = iota

	// Malformed input, retry with corrected input
	KindValidation

	// Wrong lifecycle state
	KindState

	// Signer, owner or receipt mismatch
	KindAuthorization

	// Account doesn't exist
	KindNotFound

	// Payer can't cover a transfer
	KindFunds

	// Overflow or underflow in balance math
	KindArithmetic
)

func (self Kind) String() string {
	switch self {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindFunds:
		return "funds"
	case KindArithmetic:
		return "arithmetic"
	default:
		return "internal"
	}
}

// Error is a typed operation failure. Sentinels below are compared with errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (self *Error) Error() string {
	return self.Message
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrInvalidTitle          = newError(KindValidation, "InvalidTitle", "title is empty or too long")
	ErrInvalidDescription    = newError(KindValidation, "InvalidDescription", "description is empty or too long")
	ErrInvalidTargetAmount   = newError(KindValidation, "InvalidTargetAmount", "target amount must be greater than zero")
	ErrInvalidLocation       = newError(KindValidation, "InvalidLocation", "location is too long")
	ErrInvalidMetrics        = newError(KindValidation, "InvalidMetrics", "too many metrics or a metric is too long")
	ErrInvalidMediaUris      = newError(KindValidation, "InvalidMediaUris", "too many media uris or an uri is too long")
	ErrInvalidCategory       = newError(KindValidation, "InvalidCategory", "unknown campaign category")
	ErrInvalidDonationAmount = newError(KindValidation, "InvalidDonationAmount", "donation amount must be greater than zero")
	ErrInvalidFeeConfig      = newError(KindValidation, "InvalidFeeConfig", "fee must be at most 10000 bps and the platform wallet must be set")

	ErrCampaignNotActive    = newError(KindState, "CampaignNotActive", "the campaign is not active")
	ErrCampaignExpired      = newError(KindState, "CampaignExpired", "the campaign has already expired")
	ErrCampaignNotFunded    = newError(KindState, "CampaignNotFunded", "the campaign has not been fully funded yet")
	ErrCannotCancelCampaign = newError(KindState, "CannotCancelCampaign", "this campaign cannot be cancelled at its current state")
	ErrCampaignNotCancelled = newError(KindState, "CampaignNotCancelled", "this campaign has not been cancelled")

	ErrInvalidRefundRequest  = newError(KindAuthorization, "InvalidRefundRequest", "the signer is not the original donor")
	ErrInvalidPlatformWallet = newError(KindAuthorization, "InvalidPlatformWallet", "the provided platform wallet is incorrect")
	ErrConstraintHasOne      = newError(KindAuthorization, "ConstraintHasOne", "account doesn't belong to the signer")
	ErrConstraintSeeds       = newError(KindAuthorization, "ConstraintSeeds", "account address doesn't match its seeds")

	ErrArithmeticOverflow  = newError(KindArithmetic, "ArithmeticOverflow", "arithmetic overflow")
	ErrArithmeticUnderflow = newError(KindArithmetic, "ArithmeticUnderflow", "arithmetic underflow")
)

// Ledger errors are classified the same way as the engine's own
var ledgerErrors = []struct {
	err  error
	kind Kind
	code string
}{
	{ledger.ErrAccountNotFound, KindNotFound, "AccountNotFound"},
	{ledger.ErrAccountAlreadyInUse, KindState, "AccountAlreadyInUse"},
	{ledger.ErrInsufficientFunds, KindFunds, "InsufficientFunds"},
	{ledger.ErrBalanceOverflow, KindArithmetic, "BalanceOverflow"},
	{address.ErrInvalidIdentity, KindValidation, "InvalidIdentity"},
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for _, le := range ledgerErrors {
		if errors.Is(err, le.err) {
			return le.kind
		}
	}
	return KindInternal
}

func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	for _, le := range ledgerErrors {
		if errors.Is(err, le.err) {
			return le.code
		}
	}
	return "Internal"
}
