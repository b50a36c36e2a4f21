package config

type WorkerKeyStruct struct {
	AssessmentSummaryQueue string
	ProgressRecomputeQueue string
}

var WorkerKey = &WorkerKeyStruct{
	AssessmentSummaryQueue: "assessment_summary_queue",
	ProgressRecomputeQueue: "progress_recompute_queue",
}
