// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"lilyblog/internal/models"
)

func createPost(t *testing.T, s *PostStore, title string, tags []int32, publish time.Time) int32 {
	t.Helper()
	id, err := s.Create(context.Background(), &models.Post{
		Title:        title,
		Summary:      "summary of " + title,
		TagIDs:       tags,
		ContentPath:  "md/" + title + ".md",
		RenderedPath: "html/" + title + ".html",
		WordsLen:     42,
		PublishTime:  publish,
	})
	if err != nil {
		t.Fatalf("Create(%q): %v", title, err)
	}
	return id
}

func TestPostStoreCreateAndGet(t *testing.T) {
	s := NewPostStore(testDB(t))
	ctx := context.Background()

	published := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	id := createPost(t, s, "hello", []int32{3, 1, 3}, published)

	p, err := s.Get(ctx, id, nil, false)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p == nil {
		t.Fatal("Get returned nil for an existing post")
	}
	if p.Title != "hello" || p.Summary != "summary of hello" {
		t.Errorf("got title=%q summary=%q", p.Title, p.Summary)
	}
	if !slices.Equal(p.TagIDs, []int32{3, 1, 3}) {
		t.Errorf("TagIDs = %v, want [3 1 3]", p.TagIDs)
	}
	if p.Hit != 0 || p.IsDel || p.UpdateTime != nil {
		t.Errorf("fresh post: hit=%d is_del=%v update_time=%v", p.Hit, p.IsDel, p.UpdateTime)
	}
	if !p.PublishTime.Equal(published) {
		t.Errorf("PublishTime = %v, want %v", p.PublishTime, published)
	}
	if p.WordsLen != 42 || p.ContentPath != "md/hello.md" || p.RenderedPath != "html/hello.html" {
		t.Errorf("unexpected stored fields: %+v", p)
	}
}

func TestPostStoreCreateDefaultsPublishTime(t *testing.T) {
	s := NewPostStore(testDB(t))

	before := time.Now().UTC().Add(-time.Second)
	id := createPost(t, s, "now", nil, time.Time{})

	p, err := s.Get(context.Background(), id, nil, false)
	if err != nil || p == nil {
		t.Fatalf("Get: %v, %v", p, err)
	}
	if p.PublishTime.Before(before) || p.PublishTime.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("PublishTime = %v, want close to now", p.PublishTime)
	}
	if len(p.TagIDs) != 0 {
		t.Errorf("TagIDs = %v, want empty", p.TagIDs)
	}
}

func TestPostStoreGetMissing(t *testing.T) {
	s := NewPostStore(testDB(t))

	for _, incHit := range []bool{false, true} {
		p, err := s.Get(context.Background(), 999, nil, incHit)
		if err != nil {
			t.Fatalf("Get(incHit=%v): %v", incHit, err)
		}
		if p != nil {
			t.Errorf("Get(incHit=%v) = %+v, want nil", incHit, p)
		}
	}
}

func TestPostStoreGetHitCounter(t *testing.T) {
	s := NewPostStore(testDB(t))
	ctx := context.Background()
	id := createPost(t, s, "counted", nil, time.Time{})

	for want := int32(1); want <= 3; want++ {
		p, err := s.Get(ctx, id, nil, true)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if p.Hit != want {
			t.Errorf("hit = %d, want %d", p.Hit, want)
		}
	}

	p, err := s.Get(ctx, id, nil, false)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Hit != 3 {
		t.Errorf("read without increment: hit = %d, want 3", p.Hit)
	}
}

func TestPostStoreGetIsDelFilter(t *testing.T) {
	s := NewPostStore(testDB(t))
	ctx := context.Background()
	id := createPost(t, s, "filtered", nil, time.Time{})

	p, err := s.Get(ctx, id, ptr(true), true)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p != nil {
		t.Fatalf("live post matched is_del=true: %+v", p)
	}

	p, err = s.Get(ctx, id, ptr(false), false)
	if err != nil || p == nil {
		t.Fatalf("Get(is_del=false) = %v, %v", p, err)
	}
	if p.Hit != 0 {
		t.Errorf("filtered-out increment leaked: hit = %d", p.Hit)
	}

	if _, err := s.ToggleDeleted(ctx, id); err != nil {
		t.Fatalf("ToggleDeleted: %v", err)
	}
	if p, _ := s.Get(ctx, id, ptr(false), false); p != nil {
		t.Error("deleted post matched is_del=false")
	}
	if p, _ := s.Get(ctx, id, ptr(true), false); p == nil || !p.IsDel {
		t.Error("deleted post did not match is_del=true")
	}
}

func TestPostStoreListPagination(t *testing.T) {
	s := NewPostStore(testDB(t))
	ctx := context.Background()

	var ids []int32
	for i := range 25 {
		ids = append(ids, createPost(t, s, fmt.Sprintf("post-%02d", i), nil, time.Time{}))
	}

	first, err := s.List(ctx, PostFilter{}, 0)
	if err != nil {
		t.Fatalf("List page 0: %v", err)
	}
	if first.PageTotal != 3 {
		t.Errorf("PageTotal = %d, want 3", first.PageTotal)
	}
	if len(first.Items) != 10 {
		t.Fatalf("page 0 has %d items, want 10", len(first.Items))
	}
	if first.Items[0].ID != ids[24] {
		t.Errorf("first item id = %d, want newest %d", first.Items[0].ID, ids[24])
	}
	for i := 1; i < len(first.Items); i++ {
		if first.Items[i].ID >= first.Items[i-1].ID {
			t.Fatalf("items not in descending id order at %d", i)
		}
	}

	last, err := s.List(ctx, PostFilter{}, 2)
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if len(last.Items) != 5 || last.Page != 2 || last.PageTotal != 3 {
		t.Errorf("page 2: page=%d total=%d items=%d", last.Page, last.PageTotal, len(last.Items))
	}
	if last.Items[4].ID != ids[0] {
		t.Errorf("last item id = %d, want oldest %d", last.Items[4].ID, ids[0])
	}

	if _, err := s.List(ctx, PostFilter{}, 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("page 3 err = %v, want ErrNotFound", err)
	}
	if _, err := s.List(ctx, PostFilter{}, -1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("page -1 err = %v, want ErrInvalidArgument", err)
	}
}

func TestPostStoreListEmpty(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := NewPostStore(db).List(ctx, PostFilter{}, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty table err = %v, want ErrNotFound", err)
	}

	page, err := NewPostStore(db, WithEmptyPages(true)).List(ctx, PostFilter{}, 4)
	if err != nil {
		t.Fatalf("List with empty pages: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Errorf("Items = %v, want empty non-nil slice", page.Items)
	}
	if page.PageTotal != 0 || page.Page != 4 {
		t.Errorf("page=%d total=%d, want 4 and 0", page.Page, page.PageTotal)
	}
}

func TestPostStoreListTagFilter(t *testing.T) {
	s := NewPostStore(testDB(t))
	ctx := context.Background()

	twelve := createPost(t, s, "twelve", []int32{12}, time.Time{})
	oneTwo := createPost(t, s, "one-two", []int32{1, 2}, time.Time{})
	twentyOne := createPost(t, s, "twenty-one", []int32{21, 121}, time.Time{})

	tests := []struct {
		tag  int32
		want []int32
	}{
		{1, []int32{oneTwo}},
		{2, []int32{oneTwo}},
		{12, []int32{twelve}},
		{21, []int32{twentyOne}},
		{121, []int32{twentyOne}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("tag %d", tt.tag), func(t *testing.T) {
			page, err := s.List(ctx, PostFilter{TagID: ptr(tt.tag)}, 0)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var got []int32
			for _, p := range page.Items {
				got = append(got, p.ID)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := s.List(ctx, PostFilter{TagID: ptr(int32(7))}, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("unused tag err = %v, want ErrNotFound", err)
	}
}

func TestPostStoreListConjunction(t *testing.T) {
	s := NewPostStore(testDB(t))
	ctx := context.Background()

	want := createPost(t, s, "golang tips", []int32{2}, time.Time{})
	createPost(t, s, "golang news", []int32{3}, time.Time{})
	createPost(t, s, "rust tips", []int32{2}, time.Time{})
	hidden := createPost(t, s, "golang hidden", []int32{2}, time.Time{})
	if _, err := s.ToggleDeleted(ctx, hidden); err != nil {
		t.Fatalf("ToggleDeleted: %v", err)
	}

	page, err := s.List(ctx, PostFilter{TagID: ptr(int32(2)), Keyword: ptr("golang"), IsDel: ptr(false)}, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != want || page.PageTotal != 1 {
		t.Errorf("got %+v, want only post %d", page, want)
	}

	page, err = s.List(ctx, PostFilter{IsDel: ptr(true)}, 0)
	if err != nil {
		t.Fatalf("List deleted: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != hidden {
		t.Errorf("deleted listing = %+v, want only post %d", page.Items, hidden)
	}
}

func TestPostStoreListKeywordIsLiteral(t *testing.T) {
	s := NewPostStore(testDB(t))
	ctx := context.Background()

	pct := createPost(t, s, "100% coverage", nil, time.Time{})
	createPost(t, s, "plain title", nil, time.Time{})

	page, err := s.List(ctx, PostFilter{Keyword: ptr("%")}, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != pct {
		t.Errorf("keyword %% matched %d posts, want only %d", len(page.Items), pct)
	}
}

func TestPostStoreListDateRange(t *testing.T) {
	s := NewPostStore(testDB(t))
	ctx := context.Background()

	jan := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	createPost(t, s, "january", nil, jan)
	febID := createPost(t, s, "february", nil, feb)
	marID := createPost(t, s, "march", nil, mar)

	count := func(f PostFilter) uint64 {
		t.Helper()
		n, err := s.Count(ctx, BuildPostPredicate(f))
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		return n
	}

	// Bounds are inclusive on both sides.
	page, err := s.List(ctx, PostFilter{Start: &feb, End: &mar}, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].ID != marID || page.Items[1].ID != febID {
		t.Errorf("range [feb, mar] = %+v", page.Items)
	}

	inLocal := feb.In(time.FixedZone("UTC+3", 3*3600))
	if n := count(PostFilter{Start: &inLocal, End: &inLocal}); n != 1 {
		t.Errorf("single instant in another zone matched %d, want 1", n)
	}
	if n := count(PostFilter{Start: &mar, End: &jan}); n != 0 {
		t.Errorf("inverted range matched %d, want 0", n)
	}
	if n := count(PostFilter{Start: &mar}); n != 3 {
		t.Errorf("start only matched %d, want 3 (no constraint)", n)
	}
	if n := count(PostFilter{End: &jan}); n != 3 {
		t.Errorf("end only matched %d, want 3 (no constraint)", n)
	}
}

func TestPostStoreCountMatchesListing(t *testing.T) {
	s := NewPostStore(testDB(t))
	ctx := context.Background()

	for i := range 13 {
		tags := []int32{int32(i%3 + 1)}
		createPost(t, s, fmt.Sprintf("mixed-%d", i), tags, time.Time{})
	}

	f := PostFilter{TagID: ptr(int32(1))}
	n, err := s.Count(ctx, BuildPostPredicate(f))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	page, err := s.List(ctx, f, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if n != 5 || uint64(len(page.Items)) != n || page.PageTotal != 1 {
		t.Errorf("count=%d items=%d total=%d", n, len(page.Items), page.PageTotal)
	}
}

func TestPostStoreFetchPageInvalid(t *testing.T) {
	s := NewPostStore(testDB(t))

	tests := []struct {
		name        string
		size, index int32
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative index", 10, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.FetchPage(context.Background(), Predicate{}, tt.size, tt.index)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestPageTotal(t *testing.T) {
	tests := []struct {
		total uint64
		size  int32
		want  int32
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{100, 10, 10},
	}
	for _, tt := range tests {
		if got := PageTotal(tt.total, tt.size); got != tt.want {
			t.Errorf("PageTotal(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestPostStoreUpdate(t *testing.T) {
	s := NewPostStore(testDB(t))
	ctx := context.Background()
	id := createPost(t, s, "draft", []int32{1}, time.Time{})

	n, err := s.Update(ctx, &models.Post{
		ID:           id,
		Title:        "final",
		Summary:      "new summary",
		TagIDs:       []int32{4, 5},
		ContentPath:  "md/final.md",
		RenderedPath: "html/final.html",
		WordsLen:     7,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n != 1 {
		t.Errorf("rows affected = %d, want 1", n)
	}

	p, err := s.Get(ctx, id, nil, false)
	if err != nil || p == nil {
		t.Fatalf("Get: %v, %v", p, err)
	}
	if p.Title != "final" || !slices.Equal(p.TagIDs, []int32{4, 5}) || p.WordsLen != 7 {
		t.Errorf("post not updated: %+v", p)
	}
	if p.UpdateTime == nil {
		t.Error("UpdateTime not set")
	}

	n, err = s.Update(ctx, &models.Post{ID: 999, Title: "ghost"})
	if err != nil {
		t.Fatalf("Update missing: %v", err)
	}
	if n != 0 {
		t.Errorf("rows affected for missing id = %d, want 0", n)
	}
}

func TestPostStoreToggleDeleted(t *testing.T) {
	s := NewPostStore(testDB(t))
	ctx := context.Background()
	id := createPost(t, s, "toggled", nil, time.Time{})

	for i, want := range []bool{true, false, true, false} {
		got, err := s.ToggleDeleted(ctx, id)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if got != want {
			t.Errorf("toggle %d = %v, want %v", i, got, want)
		}
	}

	if _, err := s.ToggleDeleted(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id err = %v, want ErrNotFound", err)
	}
}

func TestPostStoreExists(t *testing.T) {
	s := NewPostStore(testDB(t))
	ctx := context.Background()
	id := createPost(t, s, "exists", nil, time.Time{})

	tests := []struct {
		name  string
		id    int32
		isDel *bool
		want  bool
	}{
		{"any state", id, nil, true},
		{"live", id, ptr(false), true},
		{"deleted", id, ptr(true), false},
		{"missing", 999, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Exists(ctx, tt.id, tt.isDel)
			if err != nil {
				t.Fatalf("Exists: %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists = %v, want %v", got, tt.want)
			}
		})
	}
}

// concurrentHits fires n incrementing reads at one post and checks that
// every increment landed and every caller observed a distinct count.
func concurrentHits(t *testing.T, s *PostStore, id int32, n int) {
	t.Helper()
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int32]bool)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.Get(ctx, id, ptr(false), true)
			if err != nil || p == nil {
				t.Errorf("Get: %v, %v", p, err)
				return
			}
			mu.Lock()
			seen[p.Hit] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	p, err := s.Get(ctx, id, nil, false)
	if err != nil || p == nil {
		t.Fatalf("Get: %v, %v", p, err)
	}
	if p.Hit != int32(n) {
		t.Errorf("hit = %d after %d concurrent reads", p.Hit, n)
	}
	if len(seen) != n {
		t.Errorf("callers observed %d distinct counts, want %d", len(seen), n)
	}
}

func TestPostStoreConcurrentHits(t *testing.T) {
	s := NewPostStore(testDB(t))
	id := createPost(t, s, "popular", nil, time.Time{})
	concurrentHits(t, s, id, 40)
}

func TestPostStoreConcurrentToggles(t *testing.T) {
	s := NewPostStore(testDB(t))
	ctx := context.Background()
	id := createPost(t, s, "flappy", nil, time.Time{})

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ToggleDeleted(ctx, id); err != nil {
				t.Errorf("ToggleDeleted: %v", err)
			}
		}()
	}
	wg.Wait()

	p, err := s.Get(ctx, id, nil, false)
	if err != nil || p == nil {
		t.Fatalf("Get: %v, %v", p, err)
	}
	if p.IsDel {
		t.Error("even number of toggles left the post deleted")
	}
}

func TestPostStorePostgres(t *testing.T) {
	db := testPostgresDB(t)
	s := NewPostStore(db)
	ctx := context.Background()

	marker := fmt.Sprintf("pgtest-%d", time.Now().UnixNano())
	t.Cleanup(func() { cleanPostsByTitle(t, db, marker) })

	tagged := createPost(t, s, marker+"-a", []int32{1, 2}, time.Time{})
	createPost(t, s, marker+"-b", []int32{12}, time.Time{})

	page, err := s.List(ctx, PostFilter{TagID: ptr(int32(1)), Keyword: ptr(marker)}, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != tagged {
		t.Errorf("tag 1 listing = %+v, want only %d", page.Items, tagged)
	}

	concurrentHits(t, s, tagged, 25)

	if del, err := s.ToggleDeleted(ctx, tagged); err != nil || !del {
		t.Errorf("ToggleDeleted = %v, %v", del, err)
	}
}
