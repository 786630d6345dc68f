// Package predict trains the immunomodulatory classifier on simulated
// fingerprints, evaluates it and scores the pathogen metabolites.
package predict

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strconv"

	"github.com/crimson-sun/pathobridge/internal/figure"
	"github.com/crimson-sun/pathobridge/internal/forest"
	"github.com/crimson-sun/pathobridge/internal/metabolite"
	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/output/stdout"
	"github.com/crimson-sun/pathobridge/internal/scorer"
	"github.com/crimson-sun/pathobridge/internal/simulate"
	"github.com/crimson-sun/pathobridge/internal/stage"
)

// Name is the stage and subcommand name.
const Name = "predict"

const (
	figureDir       = "advanced_modeling"
	reportTable     = "ML_Classification_Report"
	predictionTable = "Table_S5_ML_Prediction_Scores"
)

func init() {
	stage.Register(Name, func(env *stage.Env) stage.Stage { return New(env) })
}

// Stage is the ML prediction step.
type Stage struct {
	env *stage.Env
}

// New creates the stage.
func New(env *stage.Env) *Stage {
	return &Stage{env: env}
}

func (s *Stage) Name() string { return Name }

func (s *Stage) Run(ctx context.Context) error {
	cfg := s.env.Config
	pc := cfg.Predict
	if err := stage.Require(cfg.Paths.PresenceTable, "run `pathobridge metabolism` first"); err != nil {
		return err
	}

	rng := simulate.NewRand(cfg.Seed)
	X, y := simulate.TrainingSet(rng, simulate.TrainingSpec{
		Rows:       pc.TrainingSize,
		Bits:       pc.FingerprintLen,
		BiasedBits: pc.BiasedBits,
		BiasedProb: pc.BiasedProb,
	})
	train, test := forest.StratifiedSplit(y, pc.TestFraction, rng)
	slog.Info("training data simulated", "stage", Name, "train", len(train), "test", len(test))

	Xtr, ytr := rows(X, y, train)
	f, err := forest.Train(Xtr, ytr, forest.Options{
		Trees:    pc.Trees,
		Balanced: true,
		Seed:     cfg.Seed,
		Progress: cfg.Output.Progress,
	})
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}

	if err := s.evaluate(ctx, f, X, y, test); err != nil {
		return err
	}
	return s.score(ctx, f, rng)
}

func (s *Stage) evaluate(ctx context.Context, f *forest.Forest, X [][]float64, y, test []int) error {
	Xte, yte := rows(X, y, test)
	pred := make([]int, len(Xte))
	proba := make([]float64, len(Xte))
	for i, x := range Xte {
		proba[i] = f.PredictProba(x)
		pred[i] = f.Predict(x)
	}

	report := forest.Evaluate(yte, pred).Table(reportTable)
	if err := stdout.New(stdout.WithWriter(s.env.Console), stdout.WithRows(0)).Write(ctx, report); err != nil {
		return err
	}
	if err := s.env.WriteTable(ctx, report); err != nil {
		return err
	}

	fpr, tpr, auc := forest.ROC(yte, proba)
	slog.Info("model evaluated", "stage", Name, "auc", auc)
	if err := s.env.Figure(figureDir, "Fig4A_ML_ROC_Curve.png", func(p string) error {
		return figure.ROC(p, fpr, tpr, auc, s.env.Figures)
	}); err != nil {
		return err
	}

	imp := f.Importances()
	top := forest.TopFeatures(imp, s.env.Config.Predict.TopFeatures)
	labels := make([]string, len(top))
	values := make([]float64, len(top))
	for i, j := range top {
		labels[i] = "Fingerprint_Bit_" + strconv.Itoa(j)
		values[i] = imp[j]
	}
	title := fmt.Sprintf("Top %d Important Features for Prediction Model", len(top))
	return s.env.Figure(figureDir, "Fig4B_ML_Feature_Importance.png", func(p string) error {
		return figure.Importance(p, title, labels, values, s.env.Figures)
	})
}

// score assigns random fingerprints to every metabolite present in a
// pathogen strain and writes their class-1 probabilities, highest first.
func (s *Stage) score(ctx context.Context, f *forest.Forest, rng *rand.Rand) error {
	cfg := s.env.Config
	m, err := metabolite.ReadPresence(cfg.Paths.PresenceTable)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	mets := metabolite.InAny(m, cfg.Metabolism.PathogenStrains)
	fps := simulate.Fingerprints(rng, len(mets), cfg.Predict.FingerprintLen)

	sc, err := s.scorer(f)
	if err != nil {
		return err
	}
	defer sc.Close()

	scores, err := sc.Score(fps)
	if err != nil {
		return fmt.Errorf("predict: score candidates: %w", err)
	}
	preds := make([]model.Prediction, len(mets))
	for i, name := range mets {
		preds[i] = model.Prediction{Metabolite: name, Score: scores[i]}
	}
	sort.SliceStable(preds, func(i, j int) bool { return preds[i].Score > preds[j].Score })
	slog.Info("candidate metabolites scored", "stage", Name, "count", len(preds))
	return s.env.WriteTable(ctx, PredictionTable(predictionTable, preds))
}

func (s *Stage) scorer(f *forest.Forest) (scorer.Scorer, error) {
	pc := s.env.Config.Predict
	if pc.ONNXModel == "" {
		return scorer.NewForest(f), nil
	}
	if err := stage.Require(pc.ONNXModel, "unset PATHOBRIDGE_ONNX_MODEL to score with the in-process forest"); err != nil {
		return nil, err
	}
	sc, err := scorer.NewONNX(pc.ONNXModel, pc.ONNXRuntime, pc.FingerprintLen)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	slog.Info("scoring with exported classifier", "stage", Name, "path", pc.ONNXModel)
	return sc, nil
}

// PredictionTable renders predictions as Metabolite,Immunomodulatory_Score.
func PredictionTable(name string, preds []model.Prediction) model.Table {
	t := model.Table{
		Name: name,
		Columns: []model.Column{
			{Name: "Metabolite", Kind: model.String},
			{Name: "Immunomodulatory_Score", Kind: model.Float},
		},
	}
	for _, p := range preds {
		t.Rows = append(t.Rows, []any{p.Metabolite, p.Score})
	}
	return t
}

func rows(X [][]float64, y, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i], ys[i] = X[j], y[j]
	}
	return xs, ys
}
