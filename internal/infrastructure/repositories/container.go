package repositories

import (
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/upstreamsync/internal/domain/repositories"
	fsRepo "github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/filesystem"
	gitRepo "github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/git"
	manifestRepo "github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/manifest"
	packRepo "github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/resourcepack"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(func() gitRepo.CommandRunner {
		return gitRepo.NewExecRunner()
	}); err != nil {
		return err
	}

	if err := container.Provide(func(runner gitRepo.CommandRunner) domainRepos.VCSRepository {
		return gitRepo.NewVCSRepository(runner)
	}); err != nil {
		return err
	}

	// Register the manifest dialects; HCL is detected by extension, DEPS is the fallback
	if err := container.Provide(func() domainRepos.ManifestRepository {
		repo := manifestRepo.NewRepository()
		repo.Register(manifestRepo.NewHCLDialect())
		repo.Register(manifestRepo.NewDEPSDialect())
		return repo
	}); err != nil {
		return err
	}

	if err := container.Provide(func(runner gitRepo.CommandRunner) domainRepos.ResourceCompilerRepository {
		return packRepo.NewCompilerRepository(runner)
	}); err != nil {
		return err
	}

	if err := container.Provide(func() domainRepos.FileLinkerRepository {
		return fsRepo.NewLinkerRepository()
	}); err != nil {
		return err
	}

	return nil
}
