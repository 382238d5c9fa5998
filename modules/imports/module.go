package imports

import (
	"github.com/sirupsen/logrus"

	"github.com/sanifleet/sanifleet/modules/imports/infrastructure/persistence"
	"github.com/sanifleet/sanifleet/modules/imports/presentation/controllers"
	"github.com/sanifleet/sanifleet/modules/imports/services"
	"github.com/sanifleet/sanifleet/pkg/application"
)

type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "imports"
}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewImportService(
			persistence.NewRecordRepository(),
			persistence.NewImportLogRepository(),
			app.EventPublisher(),
		),
	)
	app.RegisterControllers(
		controllers.NewImportAPIController(app),
	)

	logger := app.Logger()
	app.EventPublisher().Subscribe(func(event *services.ImportCompleted) {
		logger.WithFields(logrus.Fields{
			"org_id":      event.OrgID,
			"user_id":     event.UserID,
			"entity_type": event.EntityType,
			"inserted":    event.Inserted,
		}).Info("import completed")
	})
	return nil
}
