// Package config loads application configuration and owns every business
// constant the engine uses: industry benchmarks, health-score weights,
// detection thresholds, cost units, recovery coefficients, and alert triggers.
// Nothing in the engine packages inlines a tunable number.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/campaign-intel/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP status server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// EngineConfig collects the engine's business rules.
type EngineConfig struct {
	Benchmarks BenchmarkConfig `yaml:"benchmarks" mapstructure:"benchmarks"`
	Weights    HealthWeights   `yaml:"weights" mapstructure:"weights"`
	Detection  DetectionConfig `yaml:"detection" mapstructure:"detection"`
	Costs      CostConfig      `yaml:"costs" mapstructure:"costs"`
	Recovery   RecoveryConfig  `yaml:"recovery" mapstructure:"recovery"`
	Alerts     AlertThresholds `yaml:"alerts" mapstructure:"alerts"`
	Scoring    ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
}

// BenchmarkConfig holds fixed industry reference values, distinct from a
// campaign's own configured targets.
type BenchmarkConfig struct {
	ConversionRate float64 `yaml:"conversion_rate" mapstructure:"conversion_rate"`
	CompletionRate float64 `yaml:"completion_rate" mapstructure:"completion_rate"`
	EscalationRate float64 `yaml:"escalation_rate" mapstructure:"escalation_rate"`
	ComplianceRate float64 `yaml:"compliance_rate" mapstructure:"compliance_rate"`
	AvgSentiment   float64 `yaml:"avg_sentiment" mapstructure:"avg_sentiment"`
}

// HealthWeights distributes the overall health score across its five
// components. Must sum to 1.0.
type HealthWeights struct {
	Conversion float64 `yaml:"conversion" mapstructure:"conversion"`
	Revenue    float64 `yaml:"revenue" mapstructure:"revenue"`
	Compliance float64 `yaml:"compliance" mapstructure:"compliance"`
	Efficiency float64 `yaml:"efficiency" mapstructure:"efficiency"`
	Quality    float64 `yaml:"quality" mapstructure:"quality"`
}

// Sum returns the total of all component weights.
func (w HealthWeights) Sum() float64 {
	return w.Conversion + w.Revenue + w.Compliance + w.Efficiency + w.Quality
}

// DetectionConfig holds the issue detector's trigger thresholds.
type DetectionConfig struct {
	ConversionVariance      float64 `yaml:"conversion_variance" mapstructure:"conversion_variance"`
	DropOffRate             float64 `yaml:"drop_off_rate" mapstructure:"drop_off_rate"`
	DroppedConversionShare  float64 `yaml:"dropped_conversion_share" mapstructure:"dropped_conversion_share"`
	EscalationMultiplier    float64 `yaml:"escalation_multiplier" mapstructure:"escalation_multiplier"`
	FailureRate             float64 `yaml:"failure_rate" mapstructure:"failure_rate"`
	ShortCallSeconds        float64 `yaml:"short_call_seconds" mapstructure:"short_call_seconds"`
	ScriptUnderperformRatio float64 `yaml:"script_underperform_ratio" mapstructure:"script_underperform_ratio"`
}

// CostConfig holds fixed dollar units used in impact estimates.
type CostConfig struct {
	EscalationAgentCost float64 `yaml:"escalation_agent_cost" mapstructure:"escalation_agent_cost"`
	ComplianceRiskUnit  float64 `yaml:"compliance_risk_unit" mapstructure:"compliance_risk_unit"`
	ComplianceFineUnit  float64 `yaml:"compliance_fine_unit" mapstructure:"compliance_fine_unit"`
	EngineeringFixCost  float64 `yaml:"engineering_fix_cost" mapstructure:"engineering_fix_cost"`

	// Issue-impact multipliers applied on top of the base revenue impact.
	ConversionUpsideShare    float64 `yaml:"conversion_upside_share" mapstructure:"conversion_upside_share"`
	DropOffOpportunityShare  float64 `yaml:"drop_off_opportunity_share" mapstructure:"drop_off_opportunity_share"`
	EscalationDelayShare     float64 `yaml:"escalation_delay_share" mapstructure:"escalation_delay_share"`
	ComplianceRiskMultiplier float64 `yaml:"compliance_risk_multiplier" mapstructure:"compliance_risk_multiplier"`
}

// RecoveryConfig holds the revenue attributor's estimation coefficients.
type RecoveryConfig struct {
	// Share of dropped calls assumed convertible at the target rate.
	DroppedConvertibleShare float64 `yaml:"dropped_convertible_share" mapstructure:"dropped_convertible_share"`
	// Share of deal value lost to delayed response on escalation.
	EscalationDealShare float64 `yaml:"escalation_deal_share" mapstructure:"escalation_deal_share"`
	// Counterfactual scenario coefficients.
	DropOffReductionShare  float64 `yaml:"drop_off_reduction_share" mapstructure:"drop_off_reduction_share"`
	EscalationContainShare float64 `yaml:"escalation_contain_share" mapstructure:"escalation_contain_share"`
	BotConversionDelta     float64 `yaml:"bot_conversion_delta" mapstructure:"bot_conversion_delta"`

	// Per-reason recovery-potential coefficients.
	Potential map[string]float64 `yaml:"potential" mapstructure:"potential"`
	// Stage -> conversion probability for leakage-by-stage.
	StageProbability map[model.DropOffStage]float64 `yaml:"stage_probability" mapstructure:"stage_probability"`
}

// AlertThresholds holds the fixed alert trigger table. Percentage thresholds
// are signed: drops are negative, spikes positive.
type AlertThresholds struct {
	RevenueDropPct       float64 `yaml:"revenue_drop_pct" mapstructure:"revenue_drop_pct"`
	LeakageIncreasePct   float64 `yaml:"leakage_increase_pct" mapstructure:"leakage_increase_pct"`
	ConversionDropPct    float64 `yaml:"conversion_drop_pct" mapstructure:"conversion_drop_pct"`
	DropOffSpikePct      float64 `yaml:"drop_off_spike_pct" mapstructure:"drop_off_spike_pct"`
	EscalationSpikePct   float64 `yaml:"escalation_spike_pct" mapstructure:"escalation_spike_pct"`
	FailureSpikePct      float64 `yaml:"failure_spike_pct" mapstructure:"failure_spike_pct"`
	HealthScoreDropPts   float64 `yaml:"health_score_drop_pts" mapstructure:"health_score_drop_pts"`

	// Week-over-week revenue changes inside +/- this band read as stable.
	RevenueTrendBandPct float64 `yaml:"revenue_trend_band_pct" mapstructure:"revenue_trend_band_pct"`
}

// ScoringConfig holds health-scorer shape parameters.
type ScoringConfig struct {
	IdealDurationMinSecs float64 `yaml:"ideal_duration_min_secs" mapstructure:"ideal_duration_min_secs"`
	IdealDurationMaxSecs float64 `yaml:"ideal_duration_max_secs" mapstructure:"ideal_duration_max_secs"`

	// Issue penalties per severity, subtracted from component scores.
	PenaltyCritical float64 `yaml:"penalty_critical" mapstructure:"penalty_critical"`
	PenaltyHigh     float64 `yaml:"penalty_high" mapstructure:"penalty_high"`
	PenaltyMedium   float64 `yaml:"penalty_medium" mapstructure:"penalty_medium"`
	PenaltyLow      float64 `yaml:"penalty_low" mapstructure:"penalty_low"`
}

// Penalty returns the component-score deduction for an issue of the given
// severity.
func (s ScoringConfig) Penalty(sev model.Severity) float64 {
	switch sev {
	case model.SeverityCritical:
		return s.PenaltyCritical
	case model.SeverityHigh:
		return s.PenaltyHigh
	case model.SeverityMedium:
		return s.PenaltyMedium
	default:
		return s.PenaltyLow
	}
}

// DefaultEngineConfig returns the engine's stock business rules.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Benchmarks: BenchmarkConfig{
			ConversionRate: 0.15,
			CompletionRate: 0.70,
			EscalationRate: 0.10,
			ComplianceRate: 0.98,
			AvgSentiment:   0.30,
		},
		Weights: HealthWeights{
			Conversion: 0.35,
			Revenue:    0.25,
			Compliance: 0.20,
			Efficiency: 0.12,
			Quality:    0.08,
		},
		Detection: DetectionConfig{
			ConversionVariance:      0.20,
			DropOffRate:             0.20,
			DroppedConversionShare:  0.5,
			EscalationMultiplier:    1.5,
			FailureRate:             0.05,
			ShortCallSeconds:        180,
			ScriptUnderperformRatio: 0.7,
		},
		Costs: CostConfig{
			EscalationAgentCost:      50,
			ComplianceRiskUnit:       1000,
			ComplianceFineUnit:       500,
			EngineeringFixCost:       5000,
			ConversionUpsideShare:    0.30,
			DropOffOpportunityShare:  0.50,
			EscalationDelayShare:     0.10,
			ComplianceRiskMultiplier: 2.0,
		},
		Recovery: RecoveryConfig{
			DroppedConvertibleShare: 0.30,
			EscalationDealShare:     0.20,
			DropOffReductionShare:   0.50,
			EscalationContainShare:  0.70,
			BotConversionDelta:      -0.20,
			Potential: map[string]float64{
				"dropped_calls":         0.60,
				"low_conversion":        0.50,
				"escalation_cost":       0.40,
				"technical_failures":    0.90,
				"compliance_violations": 0.80,
			},
			StageProbability: map[model.DropOffStage]float64{
				model.StageIntro:             0.10,
				model.StageQualification:     0.20,
				model.StagePitch:             0.30,
				model.StageObjectionHandling: 0.40,
				model.StageClosing:           0.60,
				model.StageFollowUp:          0.50,
			},
		},
		Alerts: AlertThresholds{
			RevenueDropPct:      -10,
			LeakageIncreasePct:  20,
			ConversionDropPct:   -15,
			DropOffSpikePct:     20,
			EscalationSpikePct:  25,
			FailureSpikePct:     50,
			HealthScoreDropPts:  -15,
			RevenueTrendBandPct: 5,
		},
		Scoring: ScoringConfig{
			IdealDurationMinSecs: 180,
			IdealDurationMaxSecs: 300,
			PenaltyCritical:      20,
			PenaltyHigh:          12,
			PenaltyMedium:        6,
			PenaltyLow:           2,
		},
	}
}

// Load reads configuration from file and environment. Engine business rules
// default to DefaultEngineConfig and may be overridden per key.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CAMPAIGN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)

	def := DefaultEngineConfig()
	v.SetDefault("engine.benchmarks.conversion_rate", def.Benchmarks.ConversionRate)
	v.SetDefault("engine.benchmarks.completion_rate", def.Benchmarks.CompletionRate)
	v.SetDefault("engine.benchmarks.escalation_rate", def.Benchmarks.EscalationRate)
	v.SetDefault("engine.benchmarks.compliance_rate", def.Benchmarks.ComplianceRate)
	v.SetDefault("engine.benchmarks.avg_sentiment", def.Benchmarks.AvgSentiment)
	v.SetDefault("engine.weights.conversion", def.Weights.Conversion)
	v.SetDefault("engine.weights.revenue", def.Weights.Revenue)
	v.SetDefault("engine.weights.compliance", def.Weights.Compliance)
	v.SetDefault("engine.weights.efficiency", def.Weights.Efficiency)
	v.SetDefault("engine.weights.quality", def.Weights.Quality)
	v.SetDefault("engine.detection.conversion_variance", def.Detection.ConversionVariance)
	v.SetDefault("engine.detection.drop_off_rate", def.Detection.DropOffRate)
	v.SetDefault("engine.detection.dropped_conversion_share", def.Detection.DroppedConversionShare)
	v.SetDefault("engine.detection.escalation_multiplier", def.Detection.EscalationMultiplier)
	v.SetDefault("engine.detection.failure_rate", def.Detection.FailureRate)
	v.SetDefault("engine.detection.short_call_seconds", def.Detection.ShortCallSeconds)
	v.SetDefault("engine.detection.script_underperform_ratio", def.Detection.ScriptUnderperformRatio)
	v.SetDefault("engine.costs.escalation_agent_cost", def.Costs.EscalationAgentCost)
	v.SetDefault("engine.costs.compliance_risk_unit", def.Costs.ComplianceRiskUnit)
	v.SetDefault("engine.costs.compliance_fine_unit", def.Costs.ComplianceFineUnit)
	v.SetDefault("engine.costs.engineering_fix_cost", def.Costs.EngineeringFixCost)
	v.SetDefault("engine.costs.conversion_upside_share", def.Costs.ConversionUpsideShare)
	v.SetDefault("engine.costs.drop_off_opportunity_share", def.Costs.DropOffOpportunityShare)
	v.SetDefault("engine.costs.escalation_delay_share", def.Costs.EscalationDelayShare)
	v.SetDefault("engine.costs.compliance_risk_multiplier", def.Costs.ComplianceRiskMultiplier)
	v.SetDefault("engine.recovery.dropped_convertible_share", def.Recovery.DroppedConvertibleShare)
	v.SetDefault("engine.recovery.escalation_deal_share", def.Recovery.EscalationDealShare)
	v.SetDefault("engine.recovery.drop_off_reduction_share", def.Recovery.DropOffReductionShare)
	v.SetDefault("engine.recovery.escalation_contain_share", def.Recovery.EscalationContainShare)
	v.SetDefault("engine.recovery.bot_conversion_delta", def.Recovery.BotConversionDelta)
	v.SetDefault("engine.alerts.revenue_drop_pct", def.Alerts.RevenueDropPct)
	v.SetDefault("engine.alerts.leakage_increase_pct", def.Alerts.LeakageIncreasePct)
	v.SetDefault("engine.alerts.conversion_drop_pct", def.Alerts.ConversionDropPct)
	v.SetDefault("engine.alerts.drop_off_spike_pct", def.Alerts.DropOffSpikePct)
	v.SetDefault("engine.alerts.escalation_spike_pct", def.Alerts.EscalationSpikePct)
	v.SetDefault("engine.alerts.failure_spike_pct", def.Alerts.FailureSpikePct)
	v.SetDefault("engine.alerts.health_score_drop_pts", def.Alerts.HealthScoreDropPts)
	v.SetDefault("engine.alerts.revenue_trend_band_pct", def.Alerts.RevenueTrendBandPct)
	v.SetDefault("engine.scoring.ideal_duration_min_secs", def.Scoring.IdealDurationMinSecs)
	v.SetDefault("engine.scoring.ideal_duration_max_secs", def.Scoring.IdealDurationMaxSecs)
	v.SetDefault("engine.scoring.penalty_critical", def.Scoring.PenaltyCritical)
	v.SetDefault("engine.scoring.penalty_high", def.Scoring.PenaltyHigh)
	v.SetDefault("engine.scoring.penalty_medium", def.Scoring.PenaltyMedium)
	v.SetDefault("engine.scoring.penalty_low", def.Scoring.PenaltyLow)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	// Map-valued coefficients are not expressible as flat defaults.
	if len(cfg.Engine.Recovery.Potential) == 0 {
		cfg.Engine.Recovery.Potential = def.Recovery.Potential
	}
	if len(cfg.Engine.Recovery.StageProbability) == 0 {
		cfg.Engine.Recovery.StageProbability = def.Recovery.StageProbability
	}

	if err := ValidateEngineConfig(cfg.Engine); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
