package entity

import "strings"

// OTPType selects the verification algorithm and provisioning URI shape for
// an enrollment.
type OTPType int16

const (
	// OTPTypeUnknown is mean type is not known / not set.
	OTPTypeUnknown OTPType = 0

	// OTPTypeTimeBased mean tokens rotate on a fixed time window (TOTP).
	OTPTypeTimeBased OTPType = 1

	// OTPTypeCounterBased mean tokens advance with a counter (HOTP).
	OTPTypeCounterBased OTPType = 2

	// OTPTypeAuthenticator mean an authenticator-app enrollment with its own
	// secret generation.
	OTPTypeAuthenticator OTPType = 3
)

func (t OTPType) String() string {
	switch t {
	case OTPTypeTimeBased:
		return "totp"
	case OTPTypeCounterBased:
		return "hotp"
	case OTPTypeAuthenticator:
		return "authenticator"
	default:
		return "unknown"
	}
}

func (t OTPType) IsUnknown() bool {
	switch t {
	case OTPTypeTimeBased, OTPTypeCounterBased, OTPTypeAuthenticator:
		return false
	default:
		return true
	}
}

// ParseOTPType maps a stored or submitted type identifier to an OTPType.
// Unrecognized input maps to OTPTypeUnknown; the caller decides how to fail.
func ParseOTPType(raw string) OTPType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "totp":
		return OTPTypeTimeBased
	case "hotp":
		return OTPTypeCounterBased
	case "authenticator":
		return OTPTypeAuthenticator
	default:
		return OTPTypeUnknown
	}
}

// AuthFactor is the monotonic progression of one login session.
type AuthFactor int16

const (
	// FactorNone mean no factor has been presented yet.
	FactorNone AuthFactor = 0

	// FactorPassword mean the first factor (password) has been accepted.
	FactorPassword AuthFactor = 1

	// FactorSecond mean the second factor has been accepted.
	FactorSecond AuthFactor = 2
)

func (f AuthFactor) String() string {
	switch f {
	case FactorPassword:
		return "Password"
	case FactorSecond:
		return "SecondFactor"
	default:
		return "None"
	}
}
