package validate

import "chronocopy/internal/model"

// Job runs the full path and mask validation over a job's templates.
// Azure-typed endpoints additionally require a data source reference.
func Job(j *model.Job) Errors {
	var errs Errors

	if err := FolderPath(j.Source, j.SourceType); err != nil {
		errs.Add("source", err.Error())
	}
	if err := FolderPath(j.Target, j.TargetType); err != nil {
		errs.Add("target", err.Error())
	}

	if j.SourceType == model.LocationAzure && j.SourceAzureID == nil {
		errs.Add("sourceAzureId", "azure source requires a data source")
	}
	if j.TargetType == model.LocationAzure && j.TargetAzureID == nil {
		errs.Add("targetAzureId", "azure target requires a data source")
	}

	for _, e := range FileMasks(j.SourceFileMask, j.TargetFileMask) {
		errs.Add(e.Field, e.Message)
	}

	return errs
}
