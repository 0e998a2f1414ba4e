package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the lifetime of a cached token hash, and of the token itself.
const AuthCacheTTL = 24 * time.Hour

const OTPCachePrefix = "otp:"

const OTPTTL = 5 * time.Minute

// OTPMaxAttempts is how many wrong codes burn an outstanding OTP.
const OTPMaxAttempts = 5
