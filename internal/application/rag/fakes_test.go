package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
)

// fakeEmbedder 返回确定性向量：每条文本 -> [len(text), 序号]
type fakeEmbedder struct {
	err   error
	calls [][]string
	// short 为真时少返回一个向量，模拟上游计数错配
	short bool
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	n := len(texts)
	if f.short && n > 0 {
		n--
	}
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = []float64{float64(len(texts[i])), float64(i)}
	}
	return out, nil
}

// fakeStore 内存向量存储，按集合保存记录并记录调用
type fakeStore struct {
	collections map[string]int // name -> dimension
	records     map[string][]*Record
	matches     []*Match

	upsertErr error
	searchErr error
	listErr   error
	deleteErr error

	searchedTopK int
	deletedIDs   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: make(map[string]int),
		records:     make(map[string][]*Record),
	}
}

func (f *fakeStore) CreateCollection(_ context.Context, name string, dimension int) error {
	if _, ok := f.collections[name]; ok {
		return fmt.Errorf("collection %s exists", name)
	}
	f.collections[name] = dimension
	return nil
}

func (f *fakeStore) DropCollection(_ context.Context, name string) error {
	delete(f.collections, name)
	delete(f.records, name)
	return nil
}

func (f *fakeStore) ListCollections(_ context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]string, 0, len(f.collections))
	for name := range f.collections {
		out = append(out, name)
	}
	return out, nil
}

func (f *fakeStore) HasCollection(_ context.Context, name string) (bool, error) {
	_, ok := f.collections[name]
	return ok, nil
}

func (f *fakeStore) Upsert(_ context.Context, collection string, records []*Record) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.records[collection] = append(f.records[collection], records...)
	return nil
}

func (f *fakeStore) Search(_ context.Context, _ string, _ []float32, topK int) ([]*Match, error) {
	f.searchedTopK = topK
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.matches, nil
}

func (f *fakeStore) ListIDs(_ context.Context, collection string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]string, 0, len(f.records[collection]))
	for _, r := range f.records[collection] {
		out = append(out, r.ID)
	}
	return out, nil
}

func (f *fakeStore) FetchByIDs(_ context.Context, collection string, ids []string) ([]*Record, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []*Record
	for _, r := range f.records[collection] {
		if _, ok := want[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteByIDs(_ context.Context, collection string, ids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, ids...)
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := f.records[collection][:0]
	for _, r := range f.records[collection] {
		if _, ok := drop[r.ID]; !ok {
			kept = append(kept, r)
		}
	}
	f.records[collection] = kept
	return nil
}

// fakeCompleter 回显提示词摘要，或返回固定答案
type fakeCompleter struct {
	answer string
	err    error

	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if f.answer != "" {
		return f.answer, nil
	}
	return "echo:" + strings.Split(prompt, "\n")[0], nil
}
