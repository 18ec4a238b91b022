package audit

import (
	"github.com/infoseceng/releasegate/internal/classify"
	"github.com/infoseceng/releasegate/internal/gates"
	"github.com/infoseceng/releasegate/internal/protection"
)

// BranchAudit aggregates every fact gathered for one audited branch.
type BranchAudit struct {
	Organization string
	Repository   string
	Branch       string
	Facts        protection.Facts
	Statuses     []gates.Status
	Verdict      classify.Verdict
	Ignored      bool
	OwnerEmail   string
	Degraded     bool
}

// Options captures the runtime parameters of one audit run.
type Options struct {
	Organizations   []string
	TargetBranches  []string
	Concurrency     int
	OwnersDirectory string
}

// RunSummary counts what one audit run processed.
type RunSummary struct {
	Organizations        int
	Repositories         int
	BranchesAudited      int
	CompliantBranches    int
	NonCompliantBranches int
	FailedRepositories   int
}
