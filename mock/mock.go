// Package mock provides hand-written mock implementations of the
// praxis service interfaces for use in tests.
package mock

import (
	"context"
	"iter"

	"praxis"
)

var _ praxis.Source = (*Source)(nil)

// Source is a mock implementation of praxis.Source.
type Source struct {
	FetchPageFn func(ctx context.Context, src praxis.SourceDescriptor, page int) ([]praxis.RawUnit, bool, error)
}

func (s *Source) FetchPage(ctx context.Context, src praxis.SourceDescriptor, page int) ([]praxis.RawUnit, bool, error) {
	return s.FetchPageFn(ctx, src, page)
}

var _ praxis.Limiter = (*Limiter)(nil)

// Limiter is a mock implementation of praxis.Limiter.
type Limiter struct {
	WaitFn func(ctx context.Context) error
}

func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitFn(ctx)
}

var _ praxis.Collector = (*Collector)(nil)

// Collector is a mock implementation of praxis.Collector.
type Collector struct {
	CollectFn func(ctx context.Context, src praxis.SourceDescriptor) iter.Seq2[praxis.RawUnit, error]
}

func (c *Collector) Collect(ctx context.Context, src praxis.SourceDescriptor) iter.Seq2[praxis.RawUnit, error] {
	return c.CollectFn(ctx, src)
}

var _ praxis.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of praxis.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

var _ praxis.Completer = (*Completer)(nil)

// Completer is a mock implementation of praxis.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, instructions, payload string, out any) error
}

func (c *Completer) Complete(ctx context.Context, instructions, payload string, out any) error {
	return c.CompleteFn(ctx, instructions, payload, out)
}

var _ praxis.Classifier = (*Classifier)(nil)

// Classifier is a mock implementation of praxis.Classifier.
type Classifier struct {
	ClassifyFn func(ctx context.Context, batch praxis.Batch) ([]praxis.ClassificationResult, error)
}

func (c *Classifier) Classify(ctx context.Context, batch praxis.Batch) ([]praxis.ClassificationResult, error) {
	return c.ClassifyFn(ctx, batch)
}

var _ praxis.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of praxis.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, unit praxis.RawUnit, subjects []string) ([]praxis.CandidatePractice, error)
}

func (e *Extractor) Extract(ctx context.Context, unit praxis.RawUnit, subjects []string) ([]praxis.CandidatePractice, error) {
	return e.ExtractFn(ctx, unit, subjects)
}

var _ praxis.Scorer = (*Scorer)(nil)

// Scorer is a mock implementation of praxis.Scorer.
type Scorer struct {
	ScoreFn func(ctx context.Context, candidate praxis.CandidatePractice, subject string) (praxis.QualityScore, error)
}

func (s *Scorer) Score(ctx context.Context, candidate praxis.CandidatePractice, subject string) (praxis.QualityScore, error) {
	return s.ScoreFn(ctx, candidate, subject)
}

var _ praxis.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is a mock implementation of praxis.DocumentStore.
type DocumentStore struct {
	SaveFn   func(ctx context.Context, set *praxis.ServiceDocumentSet) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *DocumentStore) Save(ctx context.Context, set *praxis.ServiceDocumentSet) error {
	return s.SaveFn(ctx, set)
}

func (s *DocumentStore) Commit() error {
	return s.CommitFn()
}

func (s *DocumentStore) Abort() error {
	return s.AbortFn()
}

var _ praxis.UnitArchive = (*UnitArchive)(nil)

// UnitArchive is a mock implementation of praxis.UnitArchive.
type UnitArchive struct {
	ArchiveUnitsFn func(ctx context.Context, units []praxis.RawUnit) (added, known int, err error)
}

func (a *UnitArchive) ArchiveUnits(ctx context.Context, units []praxis.RawUnit) (int, int, error) {
	return a.ArchiveUnitsFn(ctx, units)
}

var _ praxis.RunService = (*RunService)(nil)

// RunService is a mock implementation of praxis.RunService.
type RunService struct {
	RecordRunFn  func(ctx context.Context, report *praxis.RunReport) error
	RecentRunsFn func(ctx context.Context, limit int) ([]*praxis.RunReport, error)
}

func (s *RunService) RecordRun(ctx context.Context, report *praxis.RunReport) error {
	return s.RecordRunFn(ctx, report)
}

func (s *RunService) RecentRuns(ctx context.Context, limit int) ([]*praxis.RunReport, error) {
	return s.RecentRunsFn(ctx, limit)
}
