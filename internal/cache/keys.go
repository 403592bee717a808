package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserTTL    = 5 * time.Minute
	GigTTL     = 5 * time.Minute
	GigListTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func GigKey(gigID uint) string {
	return fmt.Sprintf("gig:%d", gigID)
}

// GigListKey is the cache key for the first page of the public gig list.
func GigListKey() string {
	return "gigs:public:firstpage"
}

func Invalidate(ctx context.Context, keys ...string) {
	if client == nil {
		return
	}
	for _, key := range keys {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateGig(ctx context.Context, gigID uint) {
	Invalidate(ctx, GigKey(gigID), GigListKey())
}
