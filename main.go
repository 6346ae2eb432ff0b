package main

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/orgdir/orgdir-server/config"
	"github.com/orgdir/orgdir-server/controllers"
	"github.com/orgdir/orgdir-server/models"
	"github.com/orgdir/orgdir-server/policy"
	"github.com/orgdir/orgdir-server/repos"
	"github.com/orgdir/orgdir-server/server"
	"github.com/orgdir/orgdir-server/tokens"
	"github.com/orgdir/orgdir-server/utils"
	"go.uber.org/fx"
)

func main() {

	opts := []fx.Option{}
	opts = append(opts, provideOptions()...)
	opts = append(opts, fx.Invoke(run))

	app := fx.New(opts...)

	app.Run()
}

func provideOptions() []fx.Option {
	return []fx.Option{
		fx.Invoke(utils.ConfigureLogger),
		fx.Provide(config.Parse),
		fx.Provide(config.ProvidePostgres),
		fx.Provide(config.ProvideRedis),
		fx.Provide(server.CreateServer),
		fx.Provide(utils.GetDefaultRouter),
		fx.Invoke(models.InitModelRegistrations),
		fx.Provide(repos.NewUserRepo),
		fx.Provide(repos.NewOrganisationRepo),
		fx.Provide(func(cfg *config.Config) *tokens.Issuer {
			return tokens.NewIssuer(cfg.JwtParsedPrivateKey, cfg.JwtParsedPublicKey)
		}),
		fx.Provide(func(client *redis.Client, cfg *config.Config) policy.MembershipCache {
			return policy.NewRedisMembershipCache(client, time.Duration(cfg.MembershipCacheTtl)*time.Second)
		}),
		fx.Provide(func(repo *repos.OrganisationRepo, cache policy.MembershipCache) *policy.Evaluator {
			return policy.NewEvaluator(repo, cache)
		}),
		fx.Invoke(controllers.RegisterAuthController),
		fx.Invoke(controllers.RegisterUserController),
		fx.Invoke(controllers.RegisterOrganisationController),
	}
}

func run(app *fiber.App, config *config.Config, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			errChan := make(chan error)

			go func() {
				errChan <- app.Listen(config.Port)
			}()

			select {
			case err := <-errChan:
				return err
			case <-time.After(100 * time.Millisecond):
				return nil
			}
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}
