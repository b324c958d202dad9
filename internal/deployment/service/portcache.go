package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/intend-project/inserv-orch/internal/redis"
)

// PortCache implements domain.PortClaimCache on top of a Redis set per
// cluster, widening "claimed this process" (§5) to "claimed by any live
// deployment-engine replica" so two replicas assigning ports concurrently
// never hand out the same one.
type PortCache struct {
	redis *redis.Client
}

// NewPortCache builds a Redis-backed PortCache.
func NewPortCache(redisClient *redis.Client) *PortCache {
	return &PortCache{redis: redisClient}
}

func claimedSetKey(cluster string) string {
	return fmt.Sprintf("deployment:nodeport:claimed:%s", cluster)
}

// Claim adds port to the cluster's claimed set. The return value is always
// true on success since the redis.Client.SAdd wrapper doesn't report
// whether the member was new; callers rely on Claimed to avoid collisions,
// not on Claim's return value.
func (p *PortCache) Claim(ctx context.Context, cluster string, port int) (bool, error) {
	if err := p.redis.SAdd(ctx, claimedSetKey(cluster), strconv.Itoa(port)); err != nil {
		return false, fmt.Errorf("claiming nodeport %d for cluster %s: %w", port, cluster, err)
	}
	return true, nil
}

// Claimed returns every port claimed so far for cluster, across all
// replicas.
func (p *PortCache) Claimed(ctx context.Context, cluster string) (map[int]bool, error) {
	members, err := p.redis.SMembers(ctx, claimedSetKey(cluster))
	if err != nil {
		return nil, fmt.Errorf("reading claimed nodeports for cluster %s: %w", cluster, err)
	}
	claimed := make(map[int]bool, len(members))
	for _, m := range members {
		port, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		claimed[port] = true
	}
	return claimed, nil
}
