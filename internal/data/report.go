package data

import (
	"context"
	"time"

	"roulette/internal/biz/batch"
)

// BatchReport 批量报告表
type BatchReport struct {
	ID                int64     `xorm:"pk autoincr 'id'"`
	BatchID           string    `xorm:"varchar(64) notnull unique 'batch_id'"`
	Description       string    `xorm:"varchar(255) 'description'"`
	Status            string    `xorm:"varchar(16) 'status'"`
	Target            int64     `xorm:"'target'"`
	Completed         int64     `xorm:"'completed'"`
	Failed            int64     `xorm:"'failed'"`
	Red               int64     `xorm:"'red'"`
	Black             int64     `xorm:"'black'"`
	Green             int64     `xorm:"'green'"`
	Counts            string    `xorm:"text 'counts'"`  // JSON，下标为号码
	Physics           string    `xorm:"text 'physics'"` // JSON
	ChiSquare         float64   `xorm:"'chi_square'"`
	Uniform           bool      `xorm:"'uniform'"`
	MeanElapsed       float64   `xorm:"'mean_elapsed'"`
	MeanDeflectorHits float64   `xorm:"'mean_deflector_hits'"`
	WallTimeMs        int64     `xorm:"'wall_time_ms'"`
	ChartURL          string    `xorm:"text 'chart_url'"`
	CreatedAt         time.Time `xorm:"'created_at'"`
	FinishedAt        time.Time `xorm:"'finished_at'"`
	InsertedAt        time.Time `xorm:"created 'inserted_at'"`
}

func (BatchReport) TableName() string { return "batch_report" }

func toBatchReport(r *batch.Report) (*BatchReport, error) {
	counts, err := json.MarshalToString(r.Counts)
	if err != nil {
		return nil, err
	}
	physics, err := json.MarshalToString(r.Physics)
	if err != nil {
		return nil, err
	}
	return &BatchReport{
		BatchID:           r.BatchID,
		Description:       r.Description,
		Status:            r.Status.String(),
		Target:            r.Target,
		Completed:         r.Completed,
		Failed:            r.Failed,
		Red:               r.Red,
		Black:             r.Black,
		Green:             r.Green,
		Counts:            counts,
		Physics:           physics,
		ChiSquare:         r.ChiSquare,
		Uniform:           r.Uniform,
		MeanElapsed:       r.MeanElapsed,
		MeanDeflectorHits: r.MeanDeflectorHits,
		WallTimeMs:        r.WallTime.Milliseconds(),
		ChartURL:          r.ChartURL,
		CreatedAt:         r.CreatedAt,
		FinishedAt:        r.FinishedAt,
	}, nil
}

func (m *BatchReport) toReport() (*batch.Report, error) {
	r := &batch.Report{
		BatchID:           m.BatchID,
		Description:       m.Description,
		Target:            m.Target,
		Completed:         m.Completed,
		Failed:            m.Failed,
		Red:               m.Red,
		Black:             m.Black,
		Green:             m.Green,
		ChiSquare:         m.ChiSquare,
		Uniform:           m.Uniform,
		MeanElapsed:       m.MeanElapsed,
		MeanDeflectorHits: m.MeanDeflectorHits,
		WallTime:          time.Duration(m.WallTimeMs) * time.Millisecond,
		ChartURL:          m.ChartURL,
		CreatedAt:         m.CreatedAt,
		FinishedAt:        m.FinishedAt,
	}
	if st, ok := batch.ParseStatus(m.Status); ok {
		r.Status = st
	}
	if err := json.UnmarshalFromString(m.Counts, &r.Counts); err != nil {
		return nil, err
	}
	if m.Physics != "" {
		if err := json.UnmarshalFromString(m.Physics, &r.Physics); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// SaveReport 实现 DataRepo；未配置 MySQL 时跳过
func (r *dataRepo) SaveReport(ctx context.Context, rep *batch.Report) error {
	if r.data.db == nil {
		return nil
	}
	row, err := toBatchReport(rep)
	if err != nil {
		return err
	}
	n, err := r.data.db.Context(ctx).Where("batch_id = ?", row.BatchID).
		MustCols("failed", "green", "chi_square", "uniform", "chart_url").Update(row)
	if err != nil {
		return err
	}
	if n == 0 {
		_, err = r.data.db.Context(ctx).Insert(row)
	}
	return err
}

// LoadReport 按批次号读取已落库报告；未找到返回 nil
func (r *dataRepo) LoadReport(ctx context.Context, batchID string) (*batch.Report, error) {
	if r.data.db == nil {
		return nil, nil
	}
	var row BatchReport
	has, err := r.data.db.Context(ctx).Where("batch_id = ?", batchID).Get(&row)
	if err != nil || !has {
		return nil, err
	}
	return row.toReport()
}

// DeleteReport 删除报告记录
func (r *dataRepo) DeleteReport(ctx context.Context, batchID string) error {
	if r.data.db == nil {
		return nil
	}
	_, err := r.data.db.Context(ctx).Where("batch_id = ?", batchID).Delete(new(BatchReport))
	return err
}
