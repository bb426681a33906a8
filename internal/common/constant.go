package common

// AuthHeaderName is the HTTP header used to carry the bearer credential on
// outbound authenticated requests.
const AuthHeaderName = "Authorization"

// BearerPrefix is the scheme prefix expected in the auth header. Tokens read
// back from the server or from storage may or may not carry it; the
// credential store strips it before validation.
const BearerPrefix = "Bearer "
