package model

// Post is the content unit shared by the upstream API and the related post store.
type Post struct {
	ID         int64          `json:"id" bson:"id"`
	Attributes PostAttributes `json:"attributes" bson:"attributes"`
}

type PostAttributes struct {
	Title       string   `json:"title" bson:"title"`
	Subtitle    *string  `json:"subtitle" bson:"subtitle"`
	Topic       string   `json:"topic" bson:"topic"`
	Author      string   `json:"author" bson:"author"`
	ReadTime    int      `json:"readTime" bson:"readTime"`
	Body        string   `json:"body" bson:"body"`
	CreatedAt   string   `json:"createdAt" bson:"createdAt"`
	UpdatedAt   string   `json:"updatedAt" bson:"updatedAt"`
	PublishedAt string   `json:"publishedAt" bson:"publishedAt"`
	CoverImg    CoverImg `json:"coverImg" bson:"coverImg"`
}

// CoverImg mirrors the upstream media wrapper; Data is nil when the post has no cover.
type CoverImg struct {
	Data *CoverImgData `json:"data" bson:"data"`
}

type CoverImgData struct {
	ID         int64              `json:"id" bson:"id"`
	Attributes CoverImgAttributes `json:"attributes" bson:"attributes"`
}

type CoverImgAttributes struct {
	Name string `json:"name" bson:"name"`
	URL  string `json:"url" bson:"url"`
}

type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

type ListMeta struct {
	Pagination Pagination `json:"pagination"`
}

type PostList struct {
	Data []Post   `json:"data"`
	Meta ListMeta `json:"meta"`
}

type PostDetail struct {
	Data Post           `json:"data"`
	Meta map[string]any `json:"meta"`
}

// NewPostList wraps locally held posts in a single synthetic page.
func NewPostList(posts []Post) PostList {
	if posts == nil {
		posts = []Post{}
	}
	n := len(posts)
	return PostList{
		Data: posts,
		Meta: ListMeta{Pagination: Pagination{Page: 1, PageSize: n, PageCount: 1, Total: n}},
	}
}

func NewPostDetail(post Post) PostDetail {
	return PostDetail{Data: post, Meta: map[string]any{}}
}
