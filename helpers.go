package mediabridge

import "github.com/google/uuid"

// EvictionRate returns the fraction of delivered events that were later
// evicted across all subscriptions, 0.0 to 1.0. Returns 0.0 when nothing
// has been delivered.
func EvictionRate(stats BroadcasterStats) float64 {
	var delivered, evicted uint64
	for _, sub := range stats.Subscriptions {
		delivered += sub.Delivered
		evicted += sub.Evicted
	}
	if delivered == 0 {
		return 0.0
	}
	return float64(evicted) / float64(delivered)
}

// SubscriptionEvictionRate returns the eviction rate for one subscription.
// Returns 0.0 if the subscription is unknown or has no deliveries.
func SubscriptionEvictionRate(stats BroadcasterStats, id uuid.UUID) float64 {
	sub, ok := stats.Subscriptions[id]
	if !ok || sub.Delivered == 0 {
		return 0.0
	}
	return float64(sub.Evicted) / float64(sub.Delivered)
}
