package engine

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/wudi/pdftask/internal/pdftest"
	"github.com/wudi/pdftask/model/input"
	"github.com/wudi/pdftask/model/output"
	"github.com/wudi/pdftask/model/page"
	"github.com/wudi/pdftask/model/parameter"
	"github.com/wudi/pdftask/model/pdf"
	"github.com/wudi/pdftask/recovery"
	"github.com/wudi/pdftask/task"
)

func source(name string, pages int) input.Source {
	return input.NewBytesSource(pdftest.Pages(pages), name)
}

func run(t *testing.T, tk task.Task, p parameter.Parameters) []output.Document {
	t.Helper()
	docs, err := tk.Execute(context.Background(), p, task.NopMonitor())
	if err != nil {
		t.Fatalf("%s: %v", tk.Name(), err)
	}
	return docs
}

func inspect(t *testing.T, e *Engine, doc output.Document, password string) Info {
	t.Helper()
	info, err := e.Inspect(context.Background(), input.NewStreamSourceWithPassword(bytesReader(doc.Data), doc.Name, password))
	if err != nil {
		t.Fatalf("inspect %s: %v", doc.Name, err)
	}
	return info
}

func TestExtractPages(t *testing.T) {
	e := New(Config{})
	tests := []struct {
		name    string
		params  func() *parameter.ExtractPages
		pages   int
		fixture int
	}{
		{"OddPages", func() *parameter.ExtractPages { return parameter.NewExtractPages(page.OddPages) }, 2, 4},
		{"OpenRange", func() *parameter.ExtractPages {
			return parameter.NewExtractPagesInRanges(page.Single(1), page.From(3))
		}, 3, 4},
		{"ClosedRange", func() *parameter.ExtractPages {
			return parameter.NewExtractPagesInRanges(page.Range{Start: 2, End: 20})
		}, 19, 34},
		{"OverlappingRanges", func() *parameter.ExtractPages {
			return parameter.NewExtractPagesInRanges(page.Range{Start: 2, End: 3}, page.Range{Start: 3, End: 4}, page.Single(3))
		}, 3, 6},
		{"RangePastEnd", func() *parameter.ExtractPages {
			return parameter.NewExtractPagesInRanges(page.Range{Start: 3, End: 99})
		}, 2, 4},
		{"Script", func() *parameter.ExtractPages {
			return &parameter.ExtractPages{PageSelection: parameter.PageSelection{Script: "page.number <= 2"}}
		}, 2, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.params()
			p.Source = source("test.pdf", tt.fixture)
			p.SetOutput(output.NewMemory(), true)
			p.Compress = true
			p.Version = pdf.Version16

			docs := run(t, &ExtractTask{e}, p)
			if len(docs) != 1 || docs[0].Name != "test.pdf" {
				t.Fatalf("unexpected documents %v", docs)
			}
			info := inspect(t, e, docs[0], "")
			if info.Pages != tt.pages {
				t.Fatalf("expected %d pages, got %d", tt.pages, info.Pages)
			}
			if info.Version != pdf.Version16 {
				t.Fatalf("expected version 1.6, got %s", info.Version)
			}
			if info.Creator != DefaultCreator {
				t.Fatalf("expected creator %q, got %q", DefaultCreator, info.Creator)
			}
		})
	}
}

func TestExtractEmptySelection(t *testing.T) {
	e := New(Config{})
	p := parameter.NewExtractPagesInRanges(page.Range{Start: 10, End: 12})
	p.Source = source("test.pdf", 4)
	p.SetOutput(output.NewMemory(), true)
	_, err := (&ExtractTask{e}).Execute(context.Background(), p, task.NopMonitor())
	if !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	e := New(Config{})
	_, err := e.load(context.Background(), input.NewBytesSource([]byte("hello"), "x.pdf"))
	if !errors.Is(err, task.ErrSource) || !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestMerge(t *testing.T) {
	e := New(Config{})

	t.Run("All", func(t *testing.T) {
		p := parameter.NewMerge()
		p.AddInput(source("a.pdf", 4))
		p.AddInput(source("b.pdf", 3))
		p.SetOutput(output.NewMemory(), false)
		docs := run(t, &MergeTask{e}, p)
		if got := inspect(t, e, docs[0], "").Pages; got != 7 {
			t.Fatalf("expected 7 pages, got %d", got)
		}
	})

	t.Run("Ranges", func(t *testing.T) {
		p := parameter.NewMerge()
		p.AddInput(source("a.pdf", 4), page.Range{Start: 1, End: 2})
		p.AddInput(source("b.pdf", 3), page.From(3))
		p.SetOutput(output.NewMemory(), false)
		docs := run(t, &MergeTask{e}, p)
		if got := inspect(t, e, docs[0], "").Pages; got != 3 {
			t.Fatalf("expected 3 pages, got %d", got)
		}
	})

	t.Run("BlankPageBetween", func(t *testing.T) {
		p := parameter.NewMerge()
		p.AddInput(source("a.pdf", 2))
		p.AddInput(source("b.pdf", 2))
		p.BlankPageBetween = true
		p.SetOutput(output.NewMemory(), false)
		docs := run(t, &MergeTask{e}, p)
		if got := inspect(t, e, docs[0], "").Pages; got != 5 {
			t.Fatalf("expected 5 pages, got %d", got)
		}
	})

	t.Run("LenientSkipsBrokenInput", func(t *testing.T) {
		strategy := recovery.NewLenientStrategy()
		le := New(Config{Recovery: strategy})
		p := parameter.NewMerge()
		p.AddInput(source("a.pdf", 2))
		p.AddInput(input.NewBytesSource([]byte("not a pdf"), "broken.pdf"))
		p.AddInput(source("c.pdf", 1))
		p.SetOutput(output.NewMemory(), false)

		var warnings []string
		mon := task.MonitorFuncs{OnWarn: func(s string) { warnings = append(warnings, s) }}
		docs, err := (&MergeTask{le}).Execute(context.Background(), p, mon)
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if got := inspect(t, le, docs[0], "").Pages; got != 3 {
			t.Fatalf("expected 3 pages, got %d", got)
		}
		if len(warnings) != 1 || len(strategy.Errors) != 1 {
			t.Fatalf("expected one warning, got %v / %v", warnings, strategy.Errors)
		}
	})

	t.Run("StrictFailsOnBrokenInput", func(t *testing.T) {
		p := parameter.NewMerge()
		p.AddInput(source("a.pdf", 2))
		p.AddInput(input.NewBytesSource([]byte("not a pdf"), "broken.pdf"))
		p.SetOutput(output.NewMemory(), false)
		_, err := (&MergeTask{e}).Execute(context.Background(), p, task.NopMonitor())
		if !errors.Is(err, task.ErrSource) {
			t.Fatalf("expected source error, got %v", err)
		}
	})
}

func TestSplit(t *testing.T) {
	e := New(Config{})
	tests := []struct {
		name   string
		task   task.Task
		params parameter.Parameters
		names  []string
		pages  []int
	}{
		{"Every", &SplitTask{e, NameSplitEvery}, parameter.NewSplitEvery(2),
			[]string{"1_doc.pdf", "2_doc.pdf", "3_doc.pdf"}, []int{2, 2, 1}},
		{"ByPages", &SplitTask{e, NameSplit}, parameter.NewSplitByPages(3, 1, 9),
			[]string{"1_doc.pdf", "2_doc.pdf", "3_doc.pdf"}, []int{1, 2, 2}},
		{"OddSet", &SplitTask{e, NameSplitSet}, parameter.NewSimpleSplit(page.OddPages),
			[]string{"1_doc.pdf", "2_doc.pdf", "3_doc.pdf"}, []int{1, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := source("doc.pdf", 5)
			switch p := tt.params.(type) {
			case *parameter.SplitEvery:
				p.Source = src
			case *parameter.SplitByPages:
				p.Source = src
			case *parameter.SimpleSplit:
				p.Source = src
			}
			tt.params.Output().SetOutput(output.NewMemory(), false)
			docs := run(t, tt.task, tt.params)

			var names []string
			var pages []int
			for _, d := range docs {
				names = append(names, d.Name)
				pages = append(pages, inspect(t, e, d, "").Pages)
			}
			if !reflect.DeepEqual(names, tt.names) || !reflect.DeepEqual(pages, tt.pages) {
				t.Fatalf("got %v %v, want %v %v", names, pages, tt.names, tt.pages)
			}
		})
	}
}

func TestSplitChunks(t *testing.T) {
	if got := splitAfter(5, []int{3, 1, 9}); !reflect.DeepEqual(got, [][]int{{1}, {2, 3}, {4, 5}}) {
		t.Fatalf("splitAfter = %v", got)
	}
	if got := splitAfter(4, []int{4}); !reflect.DeepEqual(got, [][]int{{1, 2, 3, 4}}) {
		t.Fatalf("split after the last page = %v", got)
	}
	if got := splitEvery(5, 2); !reflect.DeepEqual(got, [][]int{{1, 2}, {3, 4}, {5}}) {
		t.Fatalf("splitEvery = %v", got)
	}
}

func TestRotate(t *testing.T) {
	e := New(Config{})
	p := parameter.NewRotate(pdf.Degrees90)
	p.Source = source("doc.pdf", 3)
	p.AddRange(page.Single(2))
	p.SetOutput(output.NewMemory(), false)
	docs := run(t, &RotateTask{e}, p)

	view, err := e.pageInfos(&document{name: "doc.pdf", data: docs[0].Data})
	if err != nil {
		t.Fatalf("page infos: %v", err)
	}
	var got []int
	for _, info := range view {
		got = append(got, info.Rotation)
	}
	if !reflect.DeepEqual(got, []int{0, 90, 0}) {
		t.Fatalf("rotations = %v", got)
	}
}

// permissionsEntry reads /P from the encrypt dictionary of data.
func permissionsEntry(t *testing.T, e *Engine, data []byte, password string) int {
	t.Helper()
	pctx, err := api.ReadContext(bytes.NewReader(data), e.configuration(password))
	if err != nil {
		t.Fatalf("read encrypted: %v", err)
	}
	d, err := pctx.EncryptDict()
	if err != nil {
		t.Fatalf("encrypt dictionary: %v", err)
	}
	p := d.IntEntry("P")
	if p == nil {
		t.Fatalf("encrypt dictionary has no /P")
	}
	return *p
}

func TestEncryptDecrypt(t *testing.T) {
	tests := []struct {
		name        string
		alg         pdf.Encryption
		permissions pdf.Permissions
		version     pdf.Version
	}{
		{"AES128", pdf.EncryptionAESv128, pdf.AllPermissions(), pdf.Version17},
		{"AES256", pdf.EncryptionAESv256, pdf.AllPermissions(), pdf.Version17},
		{"AES256NoPermissions", pdf.EncryptionAESv256, pdf.Permissions{}, pdf.Version17},
		{"RC4128PrintOnly", pdf.EncryptionRC4v128, pdf.Permissions{Print: true}, pdf.Version17},
		{"RC440", pdf.EncryptionRC4v40, pdf.Permissions{Print: true, Copy: true}, pdf.Version17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(Config{})
			enc := parameter.NewEncrypt(tt.alg, "owner")
			enc.UserPassword = "user"
			enc.Permissions = tt.permissions
			enc.Source = source("doc.pdf", 3)
			enc.SetOutput(output.NewMemory(), false)
			docs := run(t, &EncryptTask{e}, enc)

			info := inspect(t, e, docs[0], "owner")
			if !info.Encrypted || info.Pages != 3 {
				t.Fatalf("unexpected encrypted info %+v", info)
			}
			if info.Version != tt.version {
				t.Fatalf("expected version %s, got %s", tt.version, info.Version)
			}

			p := permissionsEntry(t, e, docs[0].Data, "owner")
			if p >= 0 || p&0xC0 != 0xC0 {
				t.Fatalf("/P = %d (%#x): reserved bits 7-8 and the sign bit must be set", p, uint32(p))
			}
			if want := int(int16(uint16(tt.permissions.Flags()))); p != want {
				t.Fatalf("/P = %d, want %d", p, want)
			}

			dec := parameter.NewDecrypt()
			dec.Source = input.NewStreamSourceWithPassword(bytesReader(docs[0].Data), "doc.pdf", "owner")
			dec.SetOutput(output.NewMemory(), false)
			plain := run(t, &DecryptTask{e}, dec)
			info = inspect(t, e, plain[0], "")
			if info.Encrypted || info.Pages != 3 || info.Creator != DefaultCreator {
				t.Fatalf("unexpected decrypted info %+v", info)
			}
		})
	}
}

func TestSetMetadata(t *testing.T) {
	e := New(Config{Creator: "acme tools"})
	p := parameter.NewSetMetadata(parameter.Metadata{Title: "Résumé (draft)", Author: "J. Doe"})
	p.Source = source("doc.pdf", 1)
	p.SetOutput(output.NewMemory(), false)
	docs := run(t, &MetadataTask{e}, p)

	info := inspect(t, e, docs[0], "")
	if info.Title != "Résumé (draft)" || info.Author != "J. Doe" || info.Creator != "acme tools" {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestCompressRaisesDefaultVersion(t *testing.T) {
	e := New(Config{DefaultVersion: pdf.Version14})
	p := parameter.NewExtractPages(page.AllPages)
	p.Source = source("doc.pdf", 2)
	p.SetOutput(output.NewMemory(), false)
	p.Compress = true
	docs := run(t, &ExtractTask{e}, p)
	if v := inspect(t, e, docs[0], "").Version; v != pdf.Version15 {
		t.Fatalf("expected 1.5, got %s", v)
	}
}

func TestRegister(t *testing.T) {
	ec := task.NewExecutionContext()
	if err := Register(ec, New(Config{})); err != nil {
		t.Fatalf("register: %v", err)
	}
	if n := len(ec.Names()); n != 9 {
		t.Fatalf("expected 9 tasks, got %d", n)
	}
	tk, err := ec.Task(parameter.NewSplitEvery(2))
	if err != nil || tk.Name() != NameSplitEvery {
		t.Fatalf("resolve split-every: %v %v", tk, err)
	}
	if err := Register(ec, New(Config{})); err == nil {
		t.Fatalf("second registration accepted")
	}
}

func TestWrongParameters(t *testing.T) {
	e := New(Config{})
	_, err := (&ExtractTask{e}).Execute(context.Background(), parameter.NewMerge(), task.NopMonitor())
	if !errors.Is(err, task.ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters, got %v", err)
	}
}
