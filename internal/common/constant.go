package common

// AuthorizationHeaderName is the HTTP header carrying the session token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the optional scheme prefix accepted in front of the token.
const BearerScheme = "Bearer"
