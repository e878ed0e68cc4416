// Package statement wires the scanning pipeline from configuration.
package statement

import (
	"log/slog"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/assembler"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/classifier"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/currency"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/guard"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/layout"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/service"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/source"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/validator"
	"github.com/FACorreiaa/ribapurify/pkg/config"
)

// NewScanService builds a scan service with the real PDF decoder and, when the
// binary is installed, the tesseract OCR engine.
func NewScanService(pipeline config.PipelineConfig, ocrCfg config.OCRConfig, logger *slog.Logger) *service.ScanService {
	var ocr source.OCREngine
	if ocrCfg.Enabled {
		engine := source.NewTesseractCLI(ocrCfg.Binary, ocrCfg.Language)
		if engine.Available() {
			ocr = engine
		} else {
			logger.Warn("tesseract not found, image statements will be rejected", slog.String("binary", engine.Binary))
		}
	}

	extractor := source.NewExtractor(
		source.NewPDFTextDecoder(),
		ocr,
		layout.NewReconstructor(pipeline.RowTolerance),
	)
	detector := currency.NewDetector(pipeline.TimezoneOverride)
	asm := assembler.New(classifier.New(), normalizer.NewAmountParser(pipeline.MinAccountDigits))

	logger.Info("scan pipeline ready",
		slog.String("timezone", detector.Timezone()),
		slog.Bool("ocr", ocr != nil))

	return service.NewScanService(
		validator.New(pipeline.MaxFileSize),
		extractor,
		guard.Default(),
		detector,
		asm,
		logger,
	).WithTimeout(pipeline.BatchTimeout).WithMaxFiles(pipeline.MaxFilesPerBatch)
}
