package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	PostKeyPrefix     = "post:%d"
	TagKeyPrefix      = "tag:%s"
	TrendingKeyPrefix = "posts:trending:%s"
	PostsListKey      = "posts:list"
	TopUsersKeyPrefix = "users:top:%d"
	StatsKey          = "platform:stats"
)

const (
	UserTTL     = 5 * time.Minute
	PostTTL     = 30 * time.Minute
	TagTTL      = 10 * time.Minute
	TrendingTTL = 2 * time.Minute
	StatsTTL    = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func TagKey(name string) string {
	return fmt.Sprintf(TagKeyPrefix, name)
}

func TrendingKey(period string) string {
	return fmt.Sprintf(TrendingKeyPrefix, period)
}

func TopContributorsKey(limit int) string {
	return fmt.Sprintf(TopUsersKeyPrefix, limit)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidatePostsList(ctx context.Context) {
	Invalidate(ctx, PostsListKey)
}
