package databases

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Paginate holds limit/page query values; page is 1-based
type Paginate struct {
	Limit int64
	Page  int64
}

// NewPaginate clamps limit to [1, 100] and page to >= 1
func NewPaginate(limit, page int) Paginate {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	return Paginate{Limit: int64(limit), Page: int64(page)}
}

// FindOptions returns newest-first find options for the page
func (p Paginate) FindOptions() *options.FindOptions {
	l := p.Limit
	skip := p.Page*p.Limit - p.Limit
	return &options.FindOptions{Limit: &l, Skip: &skip, Sort: bson.D{{Key: "createdAt", Value: -1}}}
}
