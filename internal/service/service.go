package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/aterrozero-consultancy/internal/config"
	"github.com/nurpe/aterrozero-consultancy/internal/model"
	"github.com/nurpe/aterrozero-consultancy/internal/repository"
)

type PDFRenderer interface {
	Render(report model.ClientReport) ([]byte, error)
}

type ExcelGenerator interface {
	Generate(report model.IndicatorReport) ([]byte, error)
}

type ConsultancyService struct {
	repo  *repository.Workspace
	pdf   PDFRenderer
	excel ExcelGenerator
	brand string
	log   zerolog.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

func NewConsultancyService(repo *repository.Workspace, pdf PDFRenderer, excel ExcelGenerator, cfg *config.Config, log zerolog.Logger) *ConsultancyService {
	return &ConsultancyService{
		repo:  repo,
		pdf:   pdf,
		excel: excel,
		brand: cfg.Report.Brand,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.New,
	}
}
