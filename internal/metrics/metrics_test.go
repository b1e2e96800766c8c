package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Hooks(t *testing.T) {
	c := New(prometheus.NewRegistry())
	hooks := c.Hooks()
	ctx := context.Background()

	hooks.OnDocument(ctx, &domain.DocumentEvent{Collection: "blog", DocumentID: "a", Valid: true, Duration: time.Millisecond})
	hooks.OnDocument(ctx, &domain.DocumentEvent{Collection: "blog", DocumentID: "b", Valid: false, Errors: 2})
	hooks.OnDocument(ctx, &domain.DocumentEvent{Collection: "blog", DocumentID: "c", Valid: true})
	hooks.OnCollection(ctx, &domain.CollectionEvent{Collection: "blog", Documents: 3, Failed: 1, Errors: 2})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.DocumentsTotal.WithLabelValues("blog", "valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DocumentsTotal.WithLabelValues("blog", "invalid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.CollectionErrors.WithLabelValues("blog")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.CollectionDuration))

	// A clean rebuild resets the gauge.
	hooks.OnCollection(ctx, &domain.CollectionEvent{Collection: "blog", Documents: 3})
	assert.Equal(t, 0.0, testutil.ToFloat64(c.CollectionErrors.WithLabelValues("blog")))
}

func TestCollector_RecordBuild(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.RecordBuild(nil)
	c.RecordBuild(errors.New("failed"))
	c.RecordBuild(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.BuildsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.BuildsTotal.WithLabelValues("failure")))
	assert.Greater(t, testutil.ToFloat64(c.LastBuild), 0.0)
}
