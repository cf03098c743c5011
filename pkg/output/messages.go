package output

import (
	"fmt"

	"github.com/arthur-debert/deployer/pkg/packages"
	"github.com/arthur-debert/deployer/pkg/types"
)

const (
	tipsPrompt  = "[Tips] "
	warnPrompt  = "[Warn] "
	errorPrompt = "[Error] "
)

func deploySucceedMessage(source, destination string) string {
	return fmt.Sprintf("The '%s' file was deployed to '%s'.", source, destination)
}

func deployFailedMessage(source, destination string, overwrite types.Overwrite, err error) string {
	if err != nil {
		return fmt.Sprintf("The '%s' file could not be deployed to '%s': %v", source, destination, err)
	}
	switch overwrite {
	case types.OverwriteNever:
		return fmt.Sprintf("The '%s' file was not deployed because '%s' already exists (overwrite: %s).", source, destination, overwrite)
	case types.OverwriteNewest:
		return fmt.Sprintf("The '%s' file was not deployed because '%s' is not older (overwrite: %s).", source, destination, overwrite)
	default:
		return fmt.Sprintf("The '%s' file could not be deployed to '%s'.", source, destination)
	}
}

func deleteSucceedMessage(path string) string {
	return fmt.Sprintf("The '%s' file was deleted.", path)
}

func deleteFailedMessage(path string, err error) string {
	if err == nil {
		return fmt.Sprintf("The '%s' file could not be deleted.", path)
	}
	return fmt.Sprintf("The '%s' file could not be deleted: %v", path, err)
}

func notExistsMessage(path string, deploymentFile bool) string {
	if deploymentFile {
		return fmt.Sprintf("The '%s' deployment file does not exist.", path)
	}
	return fmt.Sprintf("The '%s' file does not exist.", path)
}

// location renders "file (#line)"; the line is dropped when unknown.
func location(file string, line int) string {
	if line > 0 {
		return fmt.Sprintf("%s (#%d)", file, line)
	}
	return file
}

func undefinedVariableMessage(variable, expression, file string, line int) string {
	if file == "" {
		return fmt.Sprintf("The '%s' variable in the '%s' expression is undefined.", variable, expression)
	}
	return fmt.Sprintf("The '%s' variable in the '%s' expression is undefined, in %s.", variable, expression, location(file, line))
}

func undefinedResolverMessage(resolver, file string, line int) string {
	if file == "" {
		return fmt.Sprintf("The '%s' resolver is undefined.", resolver)
	}
	return fmt.Sprintf("The '%s' resolver is undefined, in %s.", resolver, location(file, line))
}

func manifestFailedMessage(path string, err error) string {
	return fmt.Sprintf("The '%s' deployment file could not be deployed: %v", path, err)
}

func packageIllegalMessage(argument string) string {
	return fmt.Sprintf("The '%s' package argument is illegal.", argument)
}

func displayVersion(version string) string {
	if version == "" {
		return packages.LatestVersion
	}
	return version
}

func packageNotFoundMessage(id, version string) string {
	return fmt.Sprintf("The '%s@%s' package was not found.", id, displayVersion(version))
}

func packageUnmatchedMessage(id, version, framework string) string {
	return fmt.Sprintf("The '%s@%s' package has no libraries for the '%s' framework.", id, displayVersion(version), framework)
}

func packageDownloadFailedMessage(id, version string, err error) string {
	if err == nil {
		return fmt.Sprintf("The '%s@%s' package could not be downloaded.", id, displayVersion(version))
	}
	return fmt.Sprintf("The '%s@%s' package could not be downloaded: %v", id, displayVersion(version), err)
}

func completeMessage(path string, total int64) string {
	return fmt.Sprintf("Deployment of '%s' completed, %d files processed.", path, total)
}
