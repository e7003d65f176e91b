package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pathstore"
)

// PathStore keeps results in a pathstore server under
//
//	docoutline/users/{user}/documents/{doc}/{meta,outline,terms}
//	docoutline/users/{user}/by_hash/{hash}/{doc}
type PathStore struct {
	client *pathstore.Client
}

func NewPathStore(client *pathstore.Client) *PathStore {
	return &PathStore{client: client}
}

func (p *PathStore) Name() string { return "pathstore" }

// Close releases idle connections to the pathstore server.
func (p *PathStore) Close() { p.client.Close() }

func userPrefix(userID string) string {
	return "docoutline/users/" + userID
}

func docPrefix(userID, docID string) string {
	return userPrefix(userID) + "/documents/" + docID
}

func hashKey(userID, hash, docID string) string {
	return userPrefix(userID) + "/by_hash/" + hash + "/" + docID
}

type outlineValue struct {
	Text string `json:"text"`
}

type termsValue struct {
	Terms []outline.Term `json:"terms"`
}

func (p *PathStore) Put(ctx context.Context, res *Result) error {
	rec := res.Record
	prefix := docPrefix(rec.UserID, rec.DocID)
	source := "docoutline:" + rec.DocID

	// Artifacts first so a visible meta node always has its artifacts.
	if err := p.client.PutNode(ctx, prefix+"/outline", pathstore.NodeRequest{
		Value:  outlineValue{Text: res.Outline},
		Source: source,
	}); err != nil {
		return fmt.Errorf("store outline: %w", err)
	}
	if err := p.client.PutNode(ctx, prefix+"/terms", pathstore.NodeRequest{
		Value:  termsValue{Terms: res.Terms},
		Source: source,
	}); err != nil {
		return fmt.Errorf("store terms: %w", err)
	}
	if err := p.client.PutNode(ctx, prefix+"/meta", pathstore.NodeRequest{
		Value:  rec,
		Source: source,
	}); err != nil {
		return fmt.Errorf("store meta: %w", err)
	}
	if rec.ContentHash != "" {
		if err := p.client.PutNode(ctx, hashKey(rec.UserID, rec.ContentHash, rec.DocID), pathstore.NodeRequest{
			Value:  map[string]string{"doc_id": rec.DocID},
			Source: source,
		}); err != nil {
			return fmt.Errorf("store hash index: %w", err)
		}
	}
	return nil
}

func (p *PathStore) Get(ctx context.Context, userID, docID string) (*Result, error) {
	prefix := docPrefix(userID, docID)
	res := &Result{}

	meta, err := p.client.GetNode(ctx, prefix+"/meta")
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrNotFound
	}
	if err := meta.Decode(&res.Record); err != nil {
		return nil, err
	}

	out, err := p.client.GetNode(ctx, prefix+"/outline")
	if err != nil {
		return nil, err
	}
	if out != nil {
		var v outlineValue
		if err := out.Decode(&v); err != nil {
			return nil, err
		}
		res.Outline = v.Text
	}

	terms, err := p.client.GetNode(ctx, prefix+"/terms")
	if err != nil {
		return nil, err
	}
	if terms != nil {
		var v termsValue
		if err := terms.Decode(&v); err != nil {
			return nil, err
		}
		res.Terms = v.Terms
	}
	return res, nil
}

func (p *PathStore) FindByHash(ctx context.Context, userID, contentHash string) (*Result, error) {
	children, err := p.client.ListChildren(ctx, userPrefix(userID)+"/by_hash/"+contentHash, 1)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, ErrNotFound
	}
	return p.Get(ctx, userID, children[0].LastSegment())
}

func (p *PathStore) List(ctx context.Context, userID string) ([]Record, error) {
	children, err := p.client.ListChildren(ctx, userPrefix(userID)+"/documents", 1000)
	if err != nil {
		return nil, err
	}
	var recs []Record
	for _, child := range children {
		if child.LastSegment() != "meta" {
			continue
		}
		var rec Record
		if err := child.Decode(&rec); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	sortRecords(recs)
	return recs, nil
}

func (p *PathStore) Delete(ctx context.Context, userID, docID string) error {
	prefix := docPrefix(userID, docID)
	meta, err := p.client.GetNode(ctx, prefix+"/meta")
	if err != nil {
		return err
	}
	if meta == nil {
		return ErrNotFound
	}
	var rec Record
	if err := meta.Decode(&rec); err != nil {
		return err
	}

	if err := p.client.DeleteNode(ctx, prefix, true); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if h := strings.TrimSpace(rec.ContentHash); h != "" {
		if err := p.client.DeleteNode(ctx, hashKey(userID, h, docID), false); err != nil {
			return fmt.Errorf("delete hash index: %w", err)
		}
	}
	return nil
}
