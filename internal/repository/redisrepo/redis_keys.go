package redisrepo

import "fmt"

const (
	POST_KEY  = "post:%s" // <postID>
	POSTS_KEY = "posts:all"
)

func PostKey(postID string) string {
	return fmt.Sprintf(POST_KEY, postID)
}

func PostsKey() string {
	return POSTS_KEY
}
