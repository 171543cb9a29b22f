package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"foodinspect/internal/domain/inspection"
)

type fakeDatasetClient struct {
	pages   [][]inspection.Raw
	calls   int
	offsets []int
	err     error
	errAt   int
}

func (c *fakeDatasetClient) FetchPage(_ context.Context, _, offset int) ([]inspection.Raw, error) {
	c.offsets = append(c.offsets, offset)
	if c.err != nil && c.calls == c.errAt {
		return nil, c.err
	}
	var page []inspection.Raw
	if c.calls < len(c.pages) {
		page = c.pages[c.calls]
	}
	c.calls++
	return page, nil
}

type memCheckpoint struct {
	records []inspection.Raw
	saves   int
}

func (m *memCheckpoint) Load(context.Context) ([]inspection.Raw, error) {
	return m.records, nil
}

func (m *memCheckpoint) Save(_ context.Context, records []inspection.Raw) error {
	m.records = append([]inspection.Raw(nil), records...)
	m.saves++
	return nil
}

func makePages(sizes ...int) [][]inspection.Raw {
	pages := make([][]inspection.Raw, 0, len(sizes))
	n := 0
	for _, size := range sizes {
		page := make([]inspection.Raw, 0, size)
		for i := 0; i < size; i++ {
			page = append(page, inspection.Raw{"inspection_id": fmt.Sprintf("%d", n)})
			n++
		}
		pages = append(pages, page)
	}
	return pages
}

func TestFetchStopsOnShortPage(t *testing.T) {
	client := &fakeDatasetClient{pages: makePages(1000, 1000, 400, 0)}
	cp := &memCheckpoint{}
	x := NewExtractor(client, cp, ExtractorOptions{PageSize: 1000, Resumable: true})

	got, err := x.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 2400 {
		t.Fatalf("total fetched = %d, want 2400", len(got))
	}
	// Short third page ends the loop; the empty fourth page is never requested.
	if client.calls != 3 {
		t.Fatalf("client calls = %d, want 3", client.calls)
	}
	if cp.saves != 3 {
		t.Fatalf("checkpoint saves = %d, want 3", cp.saves)
	}
}

func TestFetchStopsOnEmptyPageWhenNotResumable(t *testing.T) {
	client := &fakeDatasetClient{pages: makePages(1000, 1000, 400, 0)}
	cp := &memCheckpoint{}
	x := NewExtractor(client, cp, ExtractorOptions{PageSize: 1000})

	got, err := x.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 2400 {
		t.Fatalf("total fetched = %d, want 2400", len(got))
	}
	if client.calls != 4 {
		t.Fatalf("client calls = %d, want 4", client.calls)
	}
	if cp.saves != 0 {
		t.Fatalf("checkpoint saves = %d, want 0 in non-resumable mode", cp.saves)
	}
}

func TestFetchTruncatesAtRecordCap(t *testing.T) {
	client := &fakeDatasetClient{pages: makePages(1000, 1000, 1000)}
	cp := &memCheckpoint{}
	x := NewExtractor(client, cp, ExtractorOptions{PageSize: 1000, MaxRecords: 1500, Resumable: true})

	got, err := x.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1500 {
		t.Fatalf("total fetched = %d, want 1500", len(got))
	}
	if client.calls != 2 {
		t.Fatalf("client calls = %d, want 2", client.calls)
	}
	// The checkpoint holds the truncated slice, so a later resumable run
	// starts at the cap instead of refetching past it.
	if len(cp.records) != 1500 {
		t.Fatalf("checkpoint records = %d, want 1500", len(cp.records))
	}
}

func TestFetchResumeAtRecordCapSkipsFetching(t *testing.T) {
	cp := &memCheckpoint{records: append(makePages(1000)[0], makePages(1000)[0]...)}
	client := &fakeDatasetClient{pages: makePages(1000)}
	x := NewExtractor(client, cp, ExtractorOptions{PageSize: 1000, MaxRecords: 1500, Resumable: true})

	got, err := x.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1500 {
		t.Fatalf("total fetched = %d, want 1500", len(got))
	}
	if client.calls != 0 {
		t.Fatalf("client calls = %d, want 0 when checkpoint already covers the cap", client.calls)
	}
	if len(cp.records) != 1500 {
		t.Fatalf("checkpoint records = %d, want 1500", len(cp.records))
	}
}

func TestFetchResumeExactlyAtRecordCap(t *testing.T) {
	cp := &memCheckpoint{records: makePages(1500)[0]}
	client := &fakeDatasetClient{pages: makePages(1000)}
	x := NewExtractor(client, cp, ExtractorOptions{PageSize: 1000, MaxRecords: 1500, Resumable: true})

	got, err := x.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1500 {
		t.Fatalf("total fetched = %d, want 1500", len(got))
	}
	if client.calls != 0 {
		t.Fatalf("client calls = %d, want 0", client.calls)
	}
	if cp.saves != 0 {
		t.Fatalf("checkpoint saves = %d, want 0 when already at the cap", cp.saves)
	}
}

func TestFetchResumesFromCheckpoint(t *testing.T) {
	cp := &memCheckpoint{records: makePages(1000)[0]}
	client := &fakeDatasetClient{pages: makePages(300)}
	x := NewExtractor(client, cp, ExtractorOptions{PageSize: 1000, Resumable: true})

	got, err := x.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1300 {
		t.Fatalf("total fetched = %d, want 1300", len(got))
	}
	if client.offsets[0] != 1000 {
		t.Fatalf("first offset = %d, want 1000 (resume point)", client.offsets[0])
	}
}

func TestFetchAbortsOnTransportErrorKeepingCheckpoint(t *testing.T) {
	client := &fakeDatasetClient{
		pages: makePages(1000, 1000),
		err:   errors.New("http 503"),
		errAt: 1,
	}
	cp := &memCheckpoint{}
	x := NewExtractor(client, cp, ExtractorOptions{PageSize: 1000, Resumable: true})

	if _, err := x.Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() expected error")
	}
	// First page stays persisted for the next invocation.
	if len(cp.records) != 1000 {
		t.Fatalf("checkpoint records = %d, want 1000", len(cp.records))
	}
}
