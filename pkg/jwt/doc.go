// Package jwt implements minimal HS256 JSON Web Tokens for the session
// cookie. Only HMAC-SHA256 is supported; the algorithm is pinned on parse
// to rule out algorithm-confusion attacks, and signatures are compared in
// constant time.
package jwt
