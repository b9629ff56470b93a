package http

import "golang.org/x/time/rate"

// sendLimiter bounds send-message commands of one connection with a token bucket.
// A nil limiter allows everything.
type sendLimiter struct {
	limiter *rate.Limiter
}

func newSendLimiter(perSecond float64, burst int) *sendLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &sendLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *sendLimiter) allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}
