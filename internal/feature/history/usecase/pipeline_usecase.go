package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stock_etl/internal/feature/history/domain/entity"
)

// Stage はパイプラインの各ステップを識別します。
type Stage string

const (
	StageExtract           Stage = "extract"
	StageDocumentReset     Stage = "document_reset"
	StageAggregate         Stage = "aggregate"
	StageDocumentLoad      Stage = "document_load"
	StageRelationalConnect Stage = "relational_connect"
	StageRelationalLoad    Stage = "relational_load"
)

// DocumentStore はドキュメントストア（銘柄ごとのコレクション）への書き込みを抽象化します。
type DocumentStore interface {
	// Reset は対象データベースの全コレクションを削除します。
	Reset(ctx context.Context) error
	// Load は銘柄ごとに1コレクション、1営業日1ドキュメントとして書き込みます。
	Load(ctx context.Context, records []entity.TickerRecord) error
}

// HistoryWriter はリレーショナルストアへの全件洗い替えロードを抽象化します。
type HistoryWriter interface {
	Load(ctx context.Context, records []entity.TickerRecord) (int, error)
}

// ConnectFunc はリレーショナルストアへの接続を開きます。
// 返される close 関数は呼び出し側が必ず実行します。
type ConnectFunc func(ctx context.Context) (HistoryWriter, func() error, error)

// StageResult は1ステップの実行結果です。
type StageResult struct {
	Stage Stage
	Rows  int
	Err   error
}

// Report はパイプライン1回分の全ステップの結果です。
type Report struct {
	Results []StageResult
}

// Err は失敗したステップのエラーをまとめて返します。全て成功した場合は nil です。
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Stage, res.Err))
		}
	}
	return errors.Join(errs...)
}

// Result は指定したステップの結果を返します。
func (r Report) Result(stage Stage) (StageResult, bool) {
	for _, res := range r.Results {
		if res.Stage == stage {
			return res, true
		}
	}
	return StageResult{}, false
}

// PipelineUsecase は抽出 → ドキュメントストア初期化 → 集約 → ドキュメントストアロード →
// リレーショナル接続 → リレーショナルロードを順番に実行します。
type PipelineUsecase struct {
	extractor *ExtractUsecase
	documents DocumentStore
	connect   ConnectFunc
	log       *slog.Logger
}

// NewPipelineUsecase は新しい PipelineUsecase を作成します。
func NewPipelineUsecase(extractor *ExtractUsecase, documents DocumentStore, connect ConnectFunc, log *slog.Logger) *PipelineUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &PipelineUsecase{extractor: extractor, documents: documents, connect: connect, log: log}
}

// Run はパイプラインを逐次実行します。ステップ間のロールバックはありません。
// 失敗したステップはログに記録され、後続のステップは空のデータで実行を続けます。
func (pu *PipelineUsecase) Run(ctx context.Context, tickers []string, start, end time.Time) Report {
	var report Report
	record := func(res StageResult) {
		if res.Err != nil {
			pu.log.Error("pipeline stage failed", "stage", res.Stage, "error", res.Err)
		} else {
			pu.log.Info("pipeline stage finished", "stage", res.Stage, "rows", res.Rows)
		}
		report.Results = append(report.Results, res)
	}

	tables, err := pu.extractor.Extract(ctx, tickers, start, end)
	extracted := 0
	for _, t := range tables {
		extracted += len(t)
	}
	record(StageResult{Stage: StageExtract, Rows: extracted, Err: err})

	// 抽出結果に関わらずドキュメントストアは毎回初期化する
	record(StageResult{Stage: StageDocumentReset, Err: pu.documents.Reset(ctx)})

	combined := Aggregate(tables)
	record(StageResult{Stage: StageAggregate, Rows: len(combined)})

	err = pu.documents.Load(ctx, combined)
	record(StageResult{Stage: StageDocumentLoad, Rows: rowsOnSuccess(len(combined), err), Err: err})

	writer, closeFn, err := pu.connect(ctx)
	record(StageResult{Stage: StageRelationalConnect, Err: err})
	if err != nil {
		return report
	}
	defer func() {
		if err := closeFn(); err != nil {
			pu.log.Warn("failed to close relational connection", "error", err)
		}
	}()

	n, err := writer.Load(ctx, combined)
	record(StageResult{Stage: StageRelationalLoad, Rows: n, Err: err})

	return report
}

func rowsOnSuccess(n int, err error) int {
	if err != nil {
		return 0
	}
	return n
}
