package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all pathobridge configuration.
type Config struct {
	Paths        PathsConfig
	HostResponse HostResponseConfig
	Enrichment   EnrichmentConfig
	Metabolism   MetabolismConfig
	Bridging     BridgingConfig
	Predict      PredictConfig
	Synthesis    SynthesisConfig
	Output       OutputConfig
	Seed         uint64
}

// PathsConfig locates the result tree. All relative paths are resolved
// against Root.
type PathsConfig struct {
	Root           string
	TablesDir      string
	FiguresDir     string
	ModelsDir      string // per-strain metabolite reconstructions
	DockingDir     string
	DGEFile        string
	PresenceTable  string
	InteractionTbl string
	PredictionTbl  string
	RankingTable   string
	Manifest       string
}

// HostResponseConfig holds DGE classification thresholds.
type HostResponseConfig struct {
	PadjThreshold    float64
	Log2FCThreshold  float64
	TopLabels        int // genes labelled on the volcano plot
	MinEnrichedGenes int // ORA runs only above this many upregulated genes
}

// EnrichmentConfig selects gene set libraries and GSEA parameters.
type EnrichmentConfig struct {
	Provider      string // "enrichr" or "gmt"
	EnrichrURL    string
	GeneSetDir    string
	Libraries     []string
	GSEALibraries []string
	Cutoff        float64
	TopTerms      int
	MinSize       int
	MaxSize       int
	Permutations  int
}

// MetabolismConfig names the strains under comparison.
type MetabolismConfig struct {
	Strains         []string
	PathogenStrains []string
	CommensalStrain string
	PathwayMap      string // optional metabolite,pathway CSV
}

// BridgingConfig controls the simulated interaction step.
type BridgingConfig struct {
	KeyGenes       []string
	TopSignificant int
	Metabolites    int
	MinTargets     int
	MaxTargets     int
	MinScore       float64
	MaxScore       float64
}

// PredictConfig controls the synthetic classifier.
type PredictConfig struct {
	FingerprintLen int
	TrainingSize   int
	TestFraction   float64
	Trees          int
	BiasedBits     int
	BiasedProb     float64
	TopFeatures    int
	ONNXModel      string // optional exported classifier
	ONNXRuntime    string // shared library; defaults to libonnxruntime.so beside the model
}

// SynthesisConfig controls the ranking step.
type SynthesisConfig struct {
	TopCandidates int
	MLScale       float64
}

// OutputConfig holds output destination and logging settings.
type OutputConfig struct {
	TableFormats []string // "csv", "parquet", "xlsx", "stdout"
	Workbook     string
	FigureDPI    int
	LogLevel     string
	LogFormat    string // "text" or "json"
	Progress     bool
	WebhookURL   string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return LoadRoot(getenv("PATHOBRIDGE_ROOT", "."))
}

// LoadRoot is Load with the result tree rooted at root.
func LoadRoot(root string) Config {
	tables := resolve(root, getenv("PATHOBRIDGE_TABLES_DIR", "results/tables"))
	strains := getenvList("PATHOBRIDGE_STRAINS", []string{"Sp_ATCC49619", "Sp_TIGR4", "Sp_R6", "Sp_D39", "Ssal_K12"})

	return Config{
		Paths: PathsConfig{
			Root:           root,
			TablesDir:      tables,
			FiguresDir:     resolve(root, getenv("PATHOBRIDGE_FIGURES_DIR", "results/figures")),
			ModelsDir:      resolve(root, getenv("PATHOBRIDGE_MODELS_DIR", "results/metabolic_models")),
			DockingDir:     resolve(root, getenv("PATHOBRIDGE_DOCKING_DIR", "results/docking")),
			DGEFile:        resolve(root, getenv("PATHOBRIDGE_DGE_FILE", "results/tables/DGE_LPS_vs_Control_full_results.csv")),
			PresenceTable:  filepath.Join(tables, "Table_S3_Combined_Metabolite_Presence_Absence.csv"),
			InteractionTbl: filepath.Join(tables, "Table_S4_Predicted_Metabolite_Target_Interactions.csv"),
			PredictionTbl:  filepath.Join(tables, "Table_S5_ML_Prediction_Scores.csv"),
			RankingTable:   filepath.Join(tables, "Table_S6_Final_Candidate_Ranking.csv"),
			Manifest:       resolve(root, getenv("PATHOBRIDGE_MANIFEST", "results/run_manifest.json")),
		},
		HostResponse: HostResponseConfig{
			PadjThreshold:    getenvFloat("PATHOBRIDGE_PADJ_THRESHOLD", 0.05),
			Log2FCThreshold:  getenvFloat("PATHOBRIDGE_LOG2FC_THRESHOLD", 1.0),
			TopLabels:        getenvInt("PATHOBRIDGE_VOLCANO_LABELS", 10),
			MinEnrichedGenes: getenvInt("PATHOBRIDGE_MIN_ENRICHMENT_GENES", 10),
		},
		Enrichment: EnrichmentConfig{
			Provider:      getenv("PATHOBRIDGE_ENRICHMENT_PROVIDER", "enrichr"),
			EnrichrURL:    getenv("PATHOBRIDGE_ENRICHR_URL", "https://maayanlab.cloud/Enrichr"),
			GeneSetDir:    resolve(root, getenv("PATHOBRIDGE_GENESET_DIR", "results/genesets")),
			Libraries:     getenvList("PATHOBRIDGE_ENRICHMENT_LIBRARIES", []string{"GO_Biological_Process_2021", "KEGG_2021_Human"}),
			GSEALibraries: getenvList("PATHOBRIDGE_GSEA_LIBRARIES", []string{"KEGG_2021_Human"}),
			Cutoff:        getenvFloat("PATHOBRIDGE_ENRICHMENT_CUTOFF", 0.05),
			TopTerms:      getenvInt("PATHOBRIDGE_ENRICHMENT_TOP_TERMS", 20),
			MinSize:       getenvInt("PATHOBRIDGE_GSEA_MIN_SIZE", 5),
			MaxSize:       getenvInt("PATHOBRIDGE_GSEA_MAX_SIZE", 500),
			Permutations:  getenvInt("PATHOBRIDGE_GSEA_PERMUTATIONS", 100),
		},
		Metabolism: MetabolismConfig{
			Strains:         strains,
			PathogenStrains: getenvList("PATHOBRIDGE_PATHOGEN_STRAINS", []string{"Sp_ATCC49619", "Sp_TIGR4", "Sp_R6", "Sp_D39"}),
			CommensalStrain: getenv("PATHOBRIDGE_COMMENSAL_STRAIN", "Ssal_K12"),
			PathwayMap:      os.Getenv("PATHOBRIDGE_PATHWAY_MAP"),
		},
		Bridging: BridgingConfig{
			KeyGenes:       getenvList("PATHOBRIDGE_KEY_GENES", []string{"NFKB1", "TNF", "IL6", "JUN", "FOS", "TLR2", "MYD88"}),
			TopSignificant: getenvInt("PATHOBRIDGE_TOP_SIGNIFICANT", 10),
			Metabolites:    getenvInt("PATHOBRIDGE_BRIDGE_METABOLITES", 5),
			MinTargets:     getenvInt("PATHOBRIDGE_MIN_TARGETS", 2),
			MaxTargets:     getenvInt("PATHOBRIDGE_MAX_TARGETS", 5),
			MinScore:       getenvFloat("PATHOBRIDGE_MIN_SCORE", 0.4),
			MaxScore:       getenvFloat("PATHOBRIDGE_MAX_SCORE", 0.9),
		},
		Predict: PredictConfig{
			FingerprintLen: getenvInt("PATHOBRIDGE_FINGERPRINT_LEN", 128),
			TrainingSize:   getenvInt("PATHOBRIDGE_TRAINING_SIZE", 200),
			TestFraction:   getenvFloat("PATHOBRIDGE_TEST_FRACTION", 0.3),
			Trees:          getenvInt("PATHOBRIDGE_TREES", 100),
			BiasedBits:     getenvInt("PATHOBRIDGE_BIASED_BITS", 10),
			BiasedProb:     getenvFloat("PATHOBRIDGE_BIASED_PROB", 0.8),
			TopFeatures:    getenvInt("PATHOBRIDGE_TOP_FEATURES", 20),
			ONNXModel:      os.Getenv("PATHOBRIDGE_ONNX_MODEL"),
			ONNXRuntime:    os.Getenv("PATHOBRIDGE_ONNXRUNTIME_LIB"),
		},
		Synthesis: SynthesisConfig{
			TopCandidates: getenvInt("PATHOBRIDGE_TOP_CANDIDATES", 5),
			MLScale:       getenvFloat("PATHOBRIDGE_ML_SCALE", 10),
		},
		Output: OutputConfig{
			TableFormats: getenvList("PATHOBRIDGE_TABLE_FORMATS", []string{"csv"}),
			Workbook:     filepath.Join(tables, "Supplementary_Tables.xlsx"),
			FigureDPI:    getenvInt("PATHOBRIDGE_FIGURE_DPI", 300),
			LogLevel:     getenv("PATHOBRIDGE_LOG_LEVEL", "info"),
			LogFormat:    getenv("PATHOBRIDGE_LOG_FORMAT", "text"),
			Progress:     getenvBool("PATHOBRIDGE_PROGRESS", false),
			WebhookURL:   os.Getenv("PATHOBRIDGE_WEBHOOK_URL"),
		},
		Seed: uint64(getenvInt("PATHOBRIDGE_SEED", 42)),
	}
}

// Validate checks the configuration for values no stage can run with.
func (c Config) Validate() error {
	m := c.Metabolism
	if len(m.Strains) == 0 {
		return fmt.Errorf("config: PATHOBRIDGE_STRAINS is empty")
	}
	known := make(map[string]bool, len(m.Strains))
	for _, s := range m.Strains {
		known[s] = true
	}
	if !known[m.CommensalStrain] {
		return fmt.Errorf("config: commensal strain %q not in strain list", m.CommensalStrain)
	}
	for _, s := range m.PathogenStrains {
		if !known[s] {
			return fmt.Errorf("config: pathogen strain %q not in strain list", s)
		}
	}
	if c.Predict.TestFraction <= 0 || c.Predict.TestFraction >= 1 {
		return fmt.Errorf("config: test fraction must be in (0,1), got %v", c.Predict.TestFraction)
	}
	if c.Predict.Trees < 1 {
		return fmt.Errorf("config: tree count must be positive, got %d", c.Predict.Trees)
	}
	b := c.Bridging
	if b.MinTargets < 1 || b.MaxTargets < b.MinTargets {
		return fmt.Errorf("config: invalid target range [%d,%d]", b.MinTargets, b.MaxTargets)
	}
	if b.MaxScore <= b.MinScore {
		return fmt.Errorf("config: invalid score range [%v,%v)", b.MinScore, b.MaxScore)
	}
	for _, f := range c.Output.TableFormats {
		switch f {
		case "csv", "parquet", "xlsx", "stdout":
		default:
			return fmt.Errorf("config: unknown table format %q", f)
		}
	}
	switch c.Enrichment.Provider {
	case "enrichr", "gmt":
	default:
		return fmt.Errorf("config: unknown enrichment provider %q", c.Enrichment.Provider)
	}
	return nil
}

// FigureDir returns the figure directory for a stage.
func (c Config) FigureDir(stage string) string {
	return filepath.Join(c.Paths.FiguresDir, stage)
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getenvList splits a comma-separated variable, dropping empty items.
func getenvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
