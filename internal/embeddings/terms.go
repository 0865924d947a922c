package embeddings

// maxMedicalTerms bounds the term set attached to one embedding.
const maxMedicalTerms = 12

// medicalTermDictionary is the fixed dictionary used for keyword-overlap
// tagging. Tags annotate the stored embedding for retrieval grouping; they
// never alter the vector itself.
var medicalTermDictionary = []string{
	"diabetes", "insulin", "metformin", "glucose", "hba1c", "thyroid",
	"hypertension", "blood pressure", "cholesterol", "lipid", "cardiac",
	"arrhythmia", "heart failure", "myocardial",
	"cancer", "tumor", "chemotherapy", "malignant", "metastatic",
	"kidney", "renal", "creatinine", "dialysis",
	"asthma", "copd", "pneumonia", "respiratory",
	"anemia", "hemoglobin", "platelet",
	"depression", "anxiety",
	"arthritis", "osteoporosis",
	"allergy", "infection", "antibiotic",
	"pregnancy", "obstetric",
	"seizure", "stroke", "migraine",
}

// contextCluster groups terms under a coarse specialty tag.
type contextCluster struct {
	tag   string
	terms []string
}

// contextClusters is the fixed ordered priority list for clinical-context
// classification. First matching cluster wins; order is part of the
// contract (deterministic, auditable), not an optimization.
var contextClusters = []contextCluster{
	{tag: "endocrinology", terms: []string{"diabetes", "insulin", "metformin", "glucose", "hba1c", "thyroid"}},
	{tag: "cardiology", terms: []string{"hypertension", "blood pressure", "cholesterol", "lipid", "cardiac", "arrhythmia", "heart failure", "myocardial"}},
	{tag: "oncology", terms: []string{"cancer", "tumor", "chemotherapy", "malignant", "metastatic"}},
	{tag: "nephrology", terms: []string{"kidney", "renal", "creatinine", "dialysis"}},
	{tag: "pulmonology", terms: []string{"asthma", "copd", "pneumonia", "respiratory"}},
	{tag: "hematology", terms: []string{"anemia", "hemoglobin", "platelet"}},
	{tag: "psychiatry", terms: []string{"depression", "anxiety"}},
	{tag: "neurology", terms: []string{"seizure", "stroke", "migraine"}},
}

// DefaultClinicalContext is the classification fallback tag.
const DefaultClinicalContext = "general"
