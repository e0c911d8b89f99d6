package httpx

type ctxKey string

// CtxKeyUserID is populated by the session middleware and keys the per-user
// rate limiter.
const CtxKeyUserID ctxKey = "user_id"
