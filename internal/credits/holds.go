package credits

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const holdKeyPrefix = "credits:holds:"

// HoldStore keeps short-lived credit reservations in a Redis sorted set per
// user. Each member is "<holdID>:<cost>" scored by its expiry in unix millis,
// so abandoned holds lapse on their own.
type HoldStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewHoldStore(rdb redis.Cmdable, ttl time.Duration) *HoldStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &HoldStore{rdb: rdb, ttl: ttl}
}

// Outstanding sums the credits held by unexpired reservations.
func (h *HoldStore) Outstanding(ctx context.Context, userID uuid.UUID) (int, error) {
	key := holdKeyPrefix + userID.String()
	nowMs := strconv.FormatInt(time.Now().UnixMilli(), 10)

	pipe := h.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", nowMs)
	membersCmd := pipe.ZRange(ctx, key, 0, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("reading credit holds: %w", err)
	}

	total := 0
	for _, member := range membersCmd.Val() {
		total += holdCost(member)
	}
	return total, nil
}

// Place records a hold that expires after the store's TTL.
func (h *HoldStore) Place(ctx context.Context, userID uuid.UUID, holdID string, cost int) error {
	key := holdKeyPrefix + userID.String()
	expiry := float64(time.Now().Add(h.ttl).UnixMilli())

	pipe := h.rdb.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: expiry, Member: holdMember(holdID, cost)})
	pipe.Expire(ctx, key, h.ttl+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("placing credit hold: %w", err)
	}
	return nil
}

func (h *HoldStore) Release(ctx context.Context, userID uuid.UUID, holdID string, cost int) error {
	key := holdKeyPrefix + userID.String()
	if err := h.rdb.ZRem(ctx, key, holdMember(holdID, cost)).Err(); err != nil {
		return fmt.Errorf("releasing credit hold: %w", err)
	}
	return nil
}

func holdMember(holdID string, cost int) string {
	return holdID + ":" + strconv.Itoa(cost)
}

func holdCost(member string) int {
	i := strings.LastIndexByte(member, ':')
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(member[i+1:])
	if err != nil {
		return 0
	}
	return n
}
