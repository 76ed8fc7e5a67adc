package auth

// AuthCookieName is the httpOnly cookie carrying the session token. HTTP
// middleware and the websocket upgrade both read it.
const AuthCookieName = "tw1_token"
