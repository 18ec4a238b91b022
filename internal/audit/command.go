package audit

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/infoseceng/releasegate/internal/azdo"
	"github.com/infoseceng/releasegate/internal/gates"
	"github.com/infoseceng/releasegate/internal/githubapi"
	"github.com/infoseceng/releasegate/internal/notify"
	"github.com/infoseceng/releasegate/internal/protection"
	"github.com/infoseceng/releasegate/internal/refdata"
	"github.com/infoseceng/releasegate/internal/report"
	"github.com/infoseceng/releasegate/internal/resolver"
	"github.com/infoseceng/releasegate/internal/secrets"
)

const (
	commandUseConstant                    = "audit"
	commandShortDescriptionConstant       = "Audit GitHub organizations for release-gate compliance"
	commandLongDescriptionConstant        = "audit walks every configured organization and reports, per protected branch, whether required status checks, pull-request validation, and the static-analysis gate are in place."
	commandExecutionErrorTemplateConstant = "compliance audit failed: %w"
	unexpectedArgumentsMessageConstant    = "audit does not accept positional arguments"
	environmentPrefixConstant             = "RELEASEGATE"

	flagOrganizationsNameConstant      = "organizations"
	flagOrganizationsDescription       = "Organizations to audit (overrides configuration)"
	flagBranchesNameConstant           = "branches"
	flagBranchesDescriptionConstant    = "Target branches to audit on every repository"
	flagOutputDirectoryNameConstant    = "output-dir"
	flagOutputDirectoryDescription     = "Directory receiving the audit and remediation reports"
	flagConcurrencyNameConstant        = "concurrency"
	flagConcurrencyDescriptionConstant = "Maximum repositories audited in parallel per organization"
	flagNotifyNameConstant             = "notify"
	flagNotifyDescriptionConstant      = "Send the remediation report over SMTP after the run"

	githubTokenSecretNameConstant      = "github-token"
	primaryCITokenSecretNameConstant   = "ci-token-primary"
	secondaryCITokenSecretNameConstant = "ci-token-secondary"
	smtpPasswordSecretNameConstant     = "smtp-password"

	missingGitHubTokenErrorTemplate     = "required secret %s is unavailable: %w"
	referenceDataErrorTemplateConstant  = "unable to load reference data: %w"
	reportSinkErrorTemplateConstant     = "unable to prepare report sink: %w"
	remediationFlushErrorTemplate       = "unable to write remediation report: %w"
	notificationFailedMessageConstant   = "remediation notification failed"
	notificationSkippedMessageConstant  = "remediation notification skipped, smtp password unavailable"
	referenceDataLoadedMessageConstant  = "reference data loaded"
	missingCITokenMessageConstant       = "ci token unavailable, pipeline inspection will degrade"
	logFieldEnvironmentConstant         = "environment"
	logFieldPipelineCountConstant       = "pipelines"
	logFieldIgnoredRepositoryCountField = "ignored_repositories"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the audit configuration resolved by the root command.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command for the compliance audit.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	SecretProvider        secrets.Provider
	HTTPClient            *http.Client
	MessageSender         notify.MessageSender
}

// Build constructs the audit command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringSlice(flagOrganizationsNameConstant, nil, flagOrganizationsDescription)
	command.Flags().StringSlice(flagBranchesNameConstant, nil, flagBranchesDescriptionConstant)
	command.Flags().String(flagOutputDirectoryNameConstant, "", flagOutputDirectoryDescription)
	command.Flags().Int(flagConcurrencyNameConstant, 0, flagConcurrencyDescriptionConstant)
	command.Flags().Bool(flagNotifyNameConstant, false, flagNotifyDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration().sanitize()
	configuration = applyFlagOverrides(command, configuration)

	logger := builder.resolveLogger()
	secretProvider := builder.resolveSecretProvider()

	githubToken, tokenError := secretProvider.GetSecret(githubTokenSecretNameConstant)
	if tokenError != nil {
		return fmt.Errorf(missingGitHubTokenErrorTemplate, githubTokenSecretNameConstant, tokenError)
	}

	store, storeError := builder.loadReferenceData(logger, configuration)
	if storeError != nil {
		return fmt.Errorf(referenceDataErrorTemplateConstant, storeError)
	}

	httpClient := builder.resolveHTTPClient(configuration)
	githubClient := githubapi.NewClient(configuration.GitHubAPIBaseURL, githubToken, httpClient)
	ciClient := azdo.NewClient(configuration.CIBaseURL, httpClient)

	inspector := gates.NewInspector(ciClient, githubClient, nil, gates.Settings{
		Tokens:     builder.collectCITokens(logger, secretProvider),
		ToolTaskID: configuration.StaticAnalysisTaskID,
		ToolName:   configuration.StaticAnalysisToolName,
	})

	sink, sinkError := report.NewCSVSink(configuration.OutputDirectory)
	if sinkError != nil {
		return fmt.Errorf(reportSinkErrorTemplateConstant, sinkError)
	}

	service := NewService(
		logger,
		githubClient,
		protection.NewExtractor(githubClient),
		resolver.NewService(store, configuration.StrategicOrganization, configuration.StrategicProject),
		inspector,
		store,
		refdata.NewCSVLoader(),
		sink,
	)

	_, runError := service.Run(command.Context(), Options{
		Organizations:   configuration.Organizations,
		TargetBranches:  configuration.TargetBranches,
		Concurrency:     configuration.Concurrency,
		OwnersDirectory: configuration.OwnersDirectory,
	})
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	if flushError := sink.Flush(); flushError != nil {
		return fmt.Errorf(remediationFlushErrorTemplate, flushError)
	}

	notifyRequested, _ := command.Flags().GetBool(flagNotifyNameConstant)
	if notifyRequested || configuration.Notification.Enabled {
		builder.sendNotification(logger, secretProvider, configuration.Notification, sink)
	}

	return nil
}

func applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration) CommandConfiguration {
	if command.Flags().Changed(flagOrganizationsNameConstant) {
		organizations, _ := command.Flags().GetStringSlice(flagOrganizationsNameConstant)
		configuration.Organizations = sanitizeList(organizations)
	}
	if command.Flags().Changed(flagBranchesNameConstant) {
		branches, _ := command.Flags().GetStringSlice(flagBranchesNameConstant)
		configuration.TargetBranches = sanitizeList(branches)
	}
	if command.Flags().Changed(flagOutputDirectoryNameConstant) {
		outputDirectory, _ := command.Flags().GetString(flagOutputDirectoryNameConstant)
		if len(strings.TrimSpace(outputDirectory)) > 0 {
			configuration.OutputDirectory = strings.TrimSpace(outputDirectory)
		}
	}
	if command.Flags().Changed(flagConcurrencyNameConstant) {
		concurrency, _ := command.Flags().GetInt(flagConcurrencyNameConstant)
		if concurrency > 0 {
			configuration.Concurrency = concurrency
		}
	}
	return configuration
}

func (builder *CommandBuilder) loadReferenceData(logger *zap.Logger, configuration CommandConfiguration) (*refdata.Store, error) {
	loader := refdata.NewCSVLoader()

	primaryTable, primaryResult, primaryError := loader.LoadPipelines(configuration.PrimaryPipelinesFile)
	if primaryError != nil {
		return nil, primaryError
	}
	logger.Info(referenceDataLoadedMessageConstant,
		zap.String(logFieldEnvironmentConstant, string(refdata.EnvironmentPrimary)),
		zap.Int(logFieldPipelineCountConstant, primaryTable.Size()),
		zap.Int(logFieldSkippedRowsConstant, primaryResult.SkippedRows),
	)

	secondaryTable := refdata.NewPipelineTable()
	if len(configuration.SecondaryPipelinesFile) > 0 {
		var secondaryResult refdata.LoadResult
		var secondaryError error
		secondaryTable, secondaryResult, secondaryError = loader.LoadPipelines(configuration.SecondaryPipelinesFile)
		if secondaryError != nil {
			return nil, secondaryError
		}
		logger.Info(referenceDataLoadedMessageConstant,
			zap.String(logFieldEnvironmentConstant, string(refdata.EnvironmentSecondary)),
			zap.Int(logFieldPipelineCountConstant, secondaryTable.Size()),
			zap.Int(logFieldSkippedRowsConstant, secondaryResult.SkippedRows),
		)
	}

	var ignoredPairs []refdata.IgnoredRepository
	if len(configuration.IgnoredRepositoriesFile) > 0 {
		var ignoredError error
		ignoredPairs, _, ignoredError = loader.LoadIgnoredRepositories(configuration.IgnoredRepositoriesFile)
		if ignoredError != nil {
			return nil, ignoredError
		}
		logger.Info(referenceDataLoadedMessageConstant,
			zap.Int(logFieldIgnoredRepositoryCountField, len(ignoredPairs)),
		)
	}

	return refdata.NewStore(primaryTable, secondaryTable, ignoredPairs), nil
}

func (builder *CommandBuilder) collectCITokens(logger *zap.Logger, secretProvider secrets.Provider) map[refdata.Environment]string {
	tokens := make(map[refdata.Environment]string)
	secretNames := map[refdata.Environment]string{
		refdata.EnvironmentPrimary:   primaryCITokenSecretNameConstant,
		refdata.EnvironmentSecondary: secondaryCITokenSecretNameConstant,
	}
	for environment, secretName := range secretNames {
		tokenValue, tokenError := secretProvider.GetSecret(secretName)
		if tokenError != nil {
			logger.Warn(missingCITokenMessageConstant, zap.String(logFieldEnvironmentConstant, string(environment)))
			continue
		}
		tokens[environment] = tokenValue
	}
	return tokens
}

func (builder *CommandBuilder) sendNotification(logger *zap.Logger, secretProvider secrets.Provider, configuration NotificationConfiguration, sink *report.CSVSink) {
	senderPassword, passwordError := secretProvider.GetSecret(smtpPasswordSecretNameConstant)
	if passwordError != nil {
		logger.Warn(notificationSkippedMessageConstant)
		return
	}

	mailer := notify.NewMailer(notify.Settings{
		Host:           configuration.Host,
		Port:           configuration.Port,
		SenderEmail:    configuration.SenderEmail,
		SenderPassword: senderPassword,
		Recipients:     configuration.Recipients,
		CarbonCopy:     configuration.CarbonCopy,
		Subject:        configuration.Subject,
	}, builder.MessageSender)

	if sendError := mailer.SendRemediationReport(sink.RemediationRows(), sink.RemediationFilePath()); sendError != nil {
		logger.Warn(notificationFailedMessageConstant, zap.Error(sendError))
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveSecretProvider() secrets.Provider {
	if builder.SecretProvider != nil {
		return builder.SecretProvider
	}
	return secrets.NewEnvironmentProvider(environmentPrefixConstant)
}

func (builder *CommandBuilder) resolveHTTPClient(configuration CommandConfiguration) *http.Client {
	if builder.HTTPClient != nil {
		return builder.HTTPClient
	}
	return &http.Client{Timeout: time.Duration(configuration.HTTPTimeoutSeconds) * time.Second}
}
