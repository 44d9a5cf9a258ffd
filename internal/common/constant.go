package common

// AuthorizationHeaderName is the gRPC metadata key carrying the bearer
// access token on authenticated calls.
const AuthorizationHeaderName = "authorization"

// BearerPrefix prefixes the access token inside the authorization header.
const BearerPrefix = "Bearer "

// InternalTokenHeaderName carries the shared secret used by companion
// services when calling internal methods.
const InternalTokenHeaderName = "x-internal-token"
