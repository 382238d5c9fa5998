package core

import (
	"github.com/sirupsen/logrus"

	"github.com/sanifleet/sanifleet/modules/core/infrastructure/persistence"
	"github.com/sanifleet/sanifleet/modules/core/presentation/controllers"
	"github.com/sanifleet/sanifleet/modules/core/services"
	"github.com/sanifleet/sanifleet/pkg/application"
)

type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "core"
}

func (m *Module) Register(app application.Application) error {
	orgRepo := persistence.NewOrganizationRepository()
	memberRepo := persistence.NewMembershipRepository()

	app.RegisterServices(
		services.NewOrganizationService(orgRepo, app.EventPublisher()),
		services.NewMemberService(memberRepo),
		services.NewAccessService(memberRepo),
	)
	app.RegisterControllers(
		controllers.NewOrgAPIController(app),
	)

	logger := app.Logger()
	app.EventPublisher().Subscribe(func(event *services.OrganizationDeactivatedEvent) {
		logger.WithFields(logrus.Fields{
			"org_id": event.OrgID,
			"slug":   event.Slug,
		}).Info("organization deactivated")
	})
	return nil
}
