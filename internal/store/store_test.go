package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pathstore"
	"github.com/dgallion1/docoutline/internal/pathstore/pathstoretest"
)

func sampleResult(user, doc, hash string, created time.Time) *Result {
	return &Result{
		Record: Record{
			DocID:       doc,
			UserID:      user,
			Filename:    doc + ".docx",
			Title:       "Title " + doc,
			ContentHash: hash,
			Headers:     []string{"Intro", "Scope"},
			Sections:    2,
			Terms:       1,
			CreatedAt:   created,
		},
		Outline: "1. Intro\n  a. Term\n",
		Terms: []outline.Term{
			{Section: 1, Subsection: "a", SectionID: "1a", Text: "Term"},
		},
	}
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if _, err := s.Get(ctx, "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing doc, got %v", err)
	}

	older := sampleResult("u1", "doc-a", "hash-a", base)
	newer := sampleResult("u1", "doc-b", "hash-b", base.Add(time.Hour))
	other := sampleResult("u2", "doc-c", "hash-a", base)
	for _, r := range []*Result{older, newer, other} {
		if err := s.Put(ctx, r); err != nil {
			t.Fatalf("Put %s: %v", r.Record.DocID, err)
		}
	}

	got, err := s.Get(ctx, "u1", "doc-a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Outline != older.Outline {
		t.Errorf("expected outline %q, got %q", older.Outline, got.Outline)
	}
	if len(got.Terms) != 1 || got.Terms[0].SectionID != "1a" || got.Terms[0].Text != "Term" {
		t.Errorf("unexpected terms %+v", got.Terms)
	}
	if got.Record.Filename != "doc-a.docx" || len(got.Record.Headers) != 2 {
		t.Errorf("unexpected record %+v", got.Record)
	}
	if !got.Record.CreatedAt.Equal(base) {
		t.Errorf("expected created %v, got %v", base, got.Record.CreatedAt)
	}

	byHash, err := s.FindByHash(ctx, "u1", "hash-a")
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if byHash.Record.DocID != "doc-a" {
		t.Errorf("expected doc-a by hash, got %q", byHash.Record.DocID)
	}
	if _, err := s.FindByHash(ctx, "u1", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown hash, got %v", err)
	}

	recs, err := s.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records for u1, got %d", len(recs))
	}
	if recs[0].DocID != "doc-b" || recs[1].DocID != "doc-a" {
		t.Errorf("expected newest first, got %s, %s", recs[0].DocID, recs[1].DocID)
	}

	if err := s.Delete(ctx, "u1", "doc-a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "u1", "doc-a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := s.FindByHash(ctx, "u1", "hash-a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected hash index cleared after delete, got %v", err)
	}
	if err := s.Delete(ctx, "u1", "doc-a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}

	// Other users are untouched.
	if _, err := s.FindByHash(ctx, "u2", "hash-a"); err != nil {
		t.Errorf("expected u2 hash lookup to survive, got %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if err := m.Put(ctx, sampleResult("u", "d", "h", time.Now())); err != nil {
		t.Fatal(err)
	}
	got, _ := m.Get(ctx, "u", "d")
	got.Outline = "changed"
	again, _ := m.Get(ctx, "u", "d")
	if again.Outline == "changed" {
		t.Error("expected stored result to be unaffected by caller mutation")
	}
}

func TestPathStore(t *testing.T) {
	srv := pathstoretest.NewServer("k")
	defer srv.Close()
	exerciseStore(t, NewPathStore(pathstore.NewClient(srv.URL, "k")))
}

func TestPathStore_KeyLayout(t *testing.T) {
	srv := pathstoretest.NewServer("")
	defer srv.Close()
	s := NewPathStore(pathstore.NewClient(srv.URL, ""))
	if err := s.Put(context.Background(), sampleResult("u", "d", "h", time.Now())); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"docoutline/users/u/by_hash/h/d",
		"docoutline/users/u/documents/d/meta",
		"docoutline/users/u/documents/d/outline",
		"docoutline/users/u/documents/d/terms",
	}
	got := srv.Keys()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected keys %v, got %v", want, got)
	}
}

// fakeS3 keeps objects in a map. Methods the backend never calls are left
// to the embedded nil interface.
type fakeS3 struct {
	s3API

	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3(t *testing.T) {
	exerciseStore(t, newS3WithClient(newFakeS3(), "bucket"))
}

func TestS3_ObjectLayout(t *testing.T) {
	fake := newFakeS3()
	s := newS3WithClient(fake, "bucket")
	if err := s.Put(context.Background(), sampleResult("u", "d", "h", time.Now())); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"u/d/meta.json", "u/d/outline.txt", "u/d/terms.json", "u/by_hash/h"} {
		if _, ok := fake.objects[key]; !ok {
			t.Errorf("expected object %s", key)
		}
	}
	if string(fake.objects["u/by_hash/h"]) != "d" {
		t.Errorf("expected hash object to name doc d, got %q", fake.objects["u/by_hash/h"])
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: "none"})
	if err != nil || s != nil {
		t.Errorf("expected nil store for none, got %v, %v", s, err)
	}

	s, err = Open(ctx, Options{Backend: "memory"})
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	if s.Name() != "memory" {
		t.Errorf("expected memory backend, got %q", s.Name())
	}

	if _, err := Open(ctx, Options{Backend: "pathstore"}); err == nil {
		t.Error("expected error for pathstore without url")
	}
	if _, err := Open(ctx, Options{Backend: "s3"}); err == nil {
		t.Error("expected error for s3 without bucket")
	}
	if _, err := Open(ctx, Options{Backend: "redis"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
