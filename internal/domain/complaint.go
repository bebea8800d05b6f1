package domain

// Category is the complaint topic assigned at intake.
type Category string

// Department is the organizational unit responsible for a complaint.
type Department string

// Priority is the urgency attached to a complaint record.
type Priority string

const (
	CategoryCleanliness   Category = "Cleanliness"
	CategoryDelay         Category = "Delay"
	CategoryFoodQuality   Category = "Food Quality"
	CategoryStaffBehavior Category = "Staff Behavior"
	CategorySafety        Category = "Safety"
	CategoryTicketing     Category = "Ticketing"
	CategoryOther         Category = "Other"
)

const (
	DepartmentHousekeeping    Department = "Housekeeping"
	DepartmentOperations      Department = "Operations"
	DepartmentCatering        Department = "Catering"
	DepartmentHR              Department = "HR"
	DepartmentSecurity        Department = "Security"
	DepartmentTicketing       Department = "Ticketing"
	DepartmentCustomerSupport Department = "Customer Support"
)

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// categories keeps the mapping order stable for sampling and listing.
var categories = []Category{
	CategoryCleanliness,
	CategoryDelay,
	CategoryFoodQuality,
	CategoryStaffBehavior,
	CategorySafety,
	CategoryTicketing,
	CategoryOther,
}

var departmentByCategory = map[Category]Department{
	CategoryCleanliness:   DepartmentHousekeeping,
	CategoryDelay:         DepartmentOperations,
	CategoryFoodQuality:   DepartmentCatering,
	CategoryStaffBehavior: DepartmentHR,
	CategorySafety:        DepartmentSecurity,
	CategoryTicketing:     DepartmentTicketing,
	CategoryOther:         DepartmentCustomerSupport,
}

// Categories returns every known category in mapping order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Departments returns the departments reachable through the mapping, in mapping order.
func Departments() []Department {
	out := make([]Department, 0, len(categories))
	for _, c := range categories {
		out = append(out, departmentByCategory[c])
	}
	return out
}

// Priorities lists the priority levels used by synthetic records.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// DepartmentOf resolves the department responsible for a category.
func DepartmentOf(c Category) (Department, bool) {
	d, ok := departmentByCategory[c]
	return d, ok
}

// ParseCategory matches a free-form label against the known categories,
// ignoring case and surrounding whitespace.
func ParseCategory(value string) (Category, bool) {
	norm := normalizeLabel(value)
	for _, c := range categories {
		if normalizeLabel(string(c)) == norm {
			return c, true
		}
	}
	return "", false
}

// ComplaintRecord is a single labeled row of the training corpus.
type ComplaintRecord struct {
	Text        string
	Category    Category
	Priority    Priority
	TrainNumber string
	Location    string
	Department  Department
}
