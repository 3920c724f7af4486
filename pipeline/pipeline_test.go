package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telepress/telepress/authors"
	"github.com/telepress/telepress/channels"
	"github.com/telepress/telepress/core"
	"github.com/telepress/telepress/enhance"
	"github.com/telepress/telepress/publish"
	"github.com/telepress/telepress/storage"
	"github.com/telepress/telepress/storage/badger"
	"github.com/telepress/telepress/storage/staging"
)

type stubMedia struct {
	url string
	err error
}

func (s *stubMedia) Process(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type stubEnhancer struct {
	fn func(caption, slug string) (core.EnhancedContent, []string)
}

func (s *stubEnhancer) Enhance(_ context.Context, caption, slug string) (core.EnhancedContent, []string) {
	return s.fn(caption, slug)
}

type recordingAnnouncer struct {
	mu       sync.Mutex
	articles []*core.Article
}

func (a *recordingAnnouncer) Announce(_ context.Context, article *core.Article) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.articles = append(a.articles, article)
}

func (a *recordingAnnouncer) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.articles)
}

type outcomeCollector struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (c *outcomeCollector) collect(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
}

func (c *outcomeCollector) all() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Outcome(nil), c.outcomes...)
}

type testEnv struct {
	articles   storage.ArticleRepository
	categories storage.CategoryRepository
	staging    *staging.Store
	resolver   *authors.Resolver
	publisher  *publish.Publisher
	channelMap *channels.Map
	announcer  *recordingAnnouncer
	collector  *outcomeCollector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	articleRepo, authorRepo, categoryRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	store, err := staging.NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = categoryRepo.AddCategories(context.Background(),
		&core.Category{Name: "Sports", Slug: "sports"},
		&core.Category{Name: "News", Slug: "news"},
		&core.Category{Name: "Tech", Slug: "tech"})
	require.NoError(t, err)

	channelMap, err := channels.NewMap([]channels.ChannelMapping{
		{Handle: "beINSPORTS", Category: "sports"},
		{Handle: "dailynews", Category: "news"},
		{Handle: "technews", Category: "tech"},
		{Handle: "ghosttown", Category: "vanished"},
	})
	require.NoError(t, err)

	return &testEnv{
		articles:   articleRepo,
		categories: categoryRepo,
		staging:    store,
		resolver:   authors.NewResolver(authorRepo),
		publisher:  publish.NewPublisher(articleRepo, categoryRepo, store),
		channelMap: channelMap,
		announcer:  &recordingAnnouncer{},
		collector:  &outcomeCollector{},
	}
}

func (env *testEnv) pipeline(t *testing.T, media MediaProcessor, enhancer Enhancer, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{
		WithAnnouncer(env.announcer),
		WithOutcomeHandler(env.collector.collect),
	}, opts...)
	p, err := NewPipeline(env.channelMap, media, enhancer, env.resolver, env.publisher, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

// fallbackEnhancer is a real enhancer with the service disabled, so the
// deterministic caption-derived path is exercised end to end.
func fallbackEnhancer(t *testing.T) Enhancer {
	t.Helper()
	e, err := enhance.NewEnhancer(enhance.NewConfig(enhance.WithHost("")))
	require.NoError(t, err)
	return e
}

func message(channel string, id int, caption string) core.IncomingMessage {
	return core.IncomingMessage{
		ChannelKey:  channel,
		MessageID:   id,
		CaptionText: caption,
		MediaRef:    "https://files.example.com/photo.jpg",
		ReceivedAt:  time.Now(),
	}
}

func TestProcessEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	p := env.pipeline(t, &stubMedia{url: "/media/uploads/x.jpg"}, fallbackEnhancer(t))

	p.Dispatch(message("beINSPORTS", 42, "Real Madrid wins 3-1 #LaLiga"))
	p.Wait()

	outcomes := env.collector.all()
	require.Len(t, outcomes, 1)
	got := outcomes[0]
	assert.Equal(t, StatePersisted, got.State)
	assert.Equal(t, "sports", got.Category)
	assert.NotZero(t, got.ArticleID)
	assert.Contains(t, got.Fallbacks, enhance.FallbackFull)

	article, err := env.articles.GetArticle(context.Background(), got.ArticleID)
	require.NoError(t, err)
	assert.Contains(t, article.Title, "Real Madrid")
	assert.LessOrEqual(t, len([]rune(article.Title)), core.MaxTitleLen)
	assert.Equal(t, "/media/uploads/x.jpg", article.Image.URL)
	assert.Equal(t, core.SourceTelegram, article.Source)
	assert.True(t, article.Metadata.TelegramSource)
	assert.Equal(t, []string{"laliga"}, article.Tags)

	category, err := env.categories.GetCategory(context.Background(), article.CategoryId)
	require.NoError(t, err)
	assert.Equal(t, "sports", category.Slug)

	assert.Equal(t, 1, env.announcer.count())
}

func TestProcessDroppedOnMediaFailure(t *testing.T) {
	env := newTestEnv(t)
	p := env.pipeline(t, &stubMedia{err: errors.New("download failed")}, fallbackEnhancer(t))

	p.Dispatch(message("beINSPORTS", 1, "caption text"))
	p.Wait()

	outcomes := env.collector.all()
	require.Len(t, outcomes, 1)
	assert.Equal(t, StateDropped, outcomes[0].State)
	assert.Contains(t, outcomes[0].Reason, "media")

	recent, err := env.articles.GetRecentArticles(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)

	files, err := env.staging.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Zero(t, env.announcer.count())
}

func TestProcessRejectsDuplicateDelivery(t *testing.T) {
	env := newTestEnv(t)
	p := env.pipeline(t, &stubMedia{url: "/media/uploads/x.jpg"}, fallbackEnhancer(t))

	msg := message("beINSPORTS", 7, "Derby called off after storm warning issued.")
	p.Dispatch(msg)
	p.Wait()
	p.Dispatch(msg)
	p.Wait()

	outcomes := env.collector.all()
	require.Len(t, outcomes, 2)
	assert.Equal(t, StatePersisted, outcomes[0].State)
	assert.Equal(t, StateRejected, outcomes[1].State)
	assert.Equal(t, "duplicate delivery", outcomes[1].Reason)

	recent, err := env.articles.GetRecentArticles(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestProcessRejectsUnmappedChannel(t *testing.T) {
	env := newTestEnv(t)
	p := env.pipeline(t, &stubMedia{url: "/m/x.jpg"}, fallbackEnhancer(t))

	p.Dispatch(message("unknown", 1, "caption"))
	p.Wait()

	outcomes := env.collector.all()
	require.Len(t, outcomes, 1)
	assert.Equal(t, StateRejected, outcomes[0].State)
	assert.Equal(t, "channel not mapped", outcomes[0].Reason)
}

func TestProcessDroppedOnMissingCategory(t *testing.T) {
	env := newTestEnv(t)
	p := env.pipeline(t, &stubMedia{url: "/m/x.jpg"}, fallbackEnhancer(t))

	p.Dispatch(message("ghosttown", 1, "A post from a channel mapped to a dead category."))
	p.Wait()

	outcomes := env.collector.all()
	require.Len(t, outcomes, 1)
	assert.Equal(t, StateDropped, outcomes[0].State)
	assert.Contains(t, outcomes[0].Reason, "category not found")

	files, err := env.staging.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files, "missing category produces no record at all")
}

type slowArticleRepo struct {
	storage.ArticleRepository
	delay time.Duration
}

func (s *slowArticleRepo) AddArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error) {
	time.Sleep(s.delay)
	return s.ArticleRepository.AddArticles(ctx, articles...)
}

func TestProcessStagedOnSlowStore(t *testing.T) {
	env := newTestEnv(t)
	slow := &slowArticleRepo{ArticleRepository: env.articles, delay: 500 * time.Millisecond}
	env.publisher = publish.NewPublisher(slow, env.categories, env.staging,
		publish.WithWriteTimeout(30*time.Millisecond))
	p := env.pipeline(t, &stubMedia{url: "/m/x.jpg"}, fallbackEnhancer(t))

	p.Dispatch(message("beINSPORTS", 3, "Transfer window update from the club."))
	p.Wait()

	outcomes := env.collector.all()
	require.Len(t, outcomes, 1)
	assert.Equal(t, StateStaged, outcomes[0].State)
	assert.NotEmpty(t, outcomes[0].StagedName)

	files, err := env.staging.List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "sports", files[0].Article.CategorySlug)

	assert.Zero(t, env.announcer.count(), "staged articles are not announced")
}

func TestConcurrentMessagesIndependentOutcomes(t *testing.T) {
	env := newTestEnv(t)

	chans := []string{"beINSPORTS", "dailynews", "technews"}
	categoryFor := map[string]string{
		"beINSPORTS": "sports",
		"dailynews":  "news",
		"technews":   "tech",
	}
	bylines := []string{"Marta Villanueva", "Daniel Ortega", "Lucia Fernandez"}

	enhancer := &stubEnhancer{fn: func(caption, slug string) (core.EnhancedContent, []string) {
		return core.EnhancedContent{
			Title:      "Report: " + caption,
			Excerpt:    "Summary of: " + caption,
			Body:       "<p>" + caption + "</p>",
			AuthorName: bylines[len(caption)%len(bylines)],
			Tags:       []string{slug},
		}, nil
	}}

	p := env.pipeline(t, &stubMedia{url: "/m/x.jpg"}, enhancer, WithPoolSize(8))

	const total = 50
	for i := 0; i < total; i++ {
		channel := chans[i%len(chans)]
		p.Dispatch(message(channel, i+1,
			fmt.Sprintf("Story %d from %s with some caption padding", i, channel)))
	}
	p.Wait()

	outcomes := env.collector.all()
	require.Len(t, outcomes, total)

	for _, o := range outcomes {
		assert.Equal(t, StatePersisted, o.State, "message %d: %s", o.MessageID, o.Reason)
		assert.Equal(t, categoryFor[o.ChannelKey], o.Category,
			"message %d routed to wrong category", o.MessageID)
	}

	recent, err := env.articles.GetRecentArticles(context.Background(), total)
	require.NoError(t, err)
	assert.Len(t, recent, total)

	assert.LessOrEqual(t, env.resolver.CacheSize(), len(bylines),
		"repeated bylines must not create duplicate identities")
	assert.Equal(t, total, env.announcer.count())
}

func TestNewPipelineRequiredDependencies(t *testing.T) {
	env := newTestEnv(t)
	media := &stubMedia{url: "/m/x.jpg"}
	enh := fallbackEnhancer(t)

	_, err := NewPipeline(nil, media, enh, env.resolver, env.publisher)
	assert.ErrorIs(t, err, ErrChannelMapRequired)

	_, err = NewPipeline(env.channelMap, nil, enh, env.resolver, env.publisher)
	assert.ErrorIs(t, err, ErrMediaPipelineRequired)

	_, err = NewPipeline(env.channelMap, media, nil, env.resolver, env.publisher)
	assert.ErrorIs(t, err, ErrEnhancerRequired)

	_, err = NewPipeline(env.channelMap, media, enh, nil, env.publisher)
	assert.ErrorIs(t, err, ErrAuthorResolverRequired)

	_, err = NewPipeline(env.channelMap, media, enh, env.resolver, nil)
	assert.ErrorIs(t, err, ErrPersisterRequired)
}
