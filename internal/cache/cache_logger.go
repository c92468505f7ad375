package cache

import (
	"context"
	"fmt"
	"log/slog"
)

const AdminStatsKey = "admin"

func UserStatsKey(studentID uint) string {
	return fmt.Sprintf("user:%d", studentID)
}

func CourseKey(courseID uint) string {
	return fmt.Sprintf("id:%d", courseID)
}

// SafeInvalidatePattern logs instead of failing: a missed invalidation only
// leaves an entry until its TTL
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern", "error", err, "pattern", pattern)
	}
}

func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys", "error", err, "keys", keys)
	}
}

// InvalidateStatsCache drops the admin aggregate and the per-student entries of studentIDs.
// With no ids every per-student entry is dropped.
func InvalidateStatsCache(ctx context.Context, cm *CacheManager, studentIDs ...uint) {
	if len(studentIDs) == 0 {
		SafeDelete(ctx, cm.Stats, AdminStatsKey)
		SafeInvalidatePattern(ctx, cm.Stats, "user:*")
		return
	}

	keys := make([]string, 0, len(studentIDs)+1)
	keys = append(keys, AdminStatsKey)
	for _, id := range studentIDs {
		keys = append(keys, UserStatsKey(id))
	}
	SafeDelete(ctx, cm.Stats, keys...)
}

// InvalidateAdminStats drops only the admin aggregate, for writes that no
// per-student view reflects
func InvalidateAdminStats(ctx context.Context, cm *CacheManager) {
	SafeDelete(ctx, cm.Stats, AdminStatsKey)
}

func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID uint) {
	SafeDelete(ctx, cm.Course, CourseKey(courseID))
}
