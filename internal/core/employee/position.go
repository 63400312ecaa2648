package employee

import (
	"fmt"
	"strings"
)

// Position は職位カタログに含まれる役職名です。
type Position string

const (
	PositionJuniorDeveloper          Position = "Junior Developer"
	PositionDeveloper                Position = "Developer"
	PositionSeniorDeveloper          Position = "Senior Developer"
	PositionLeadDeveloper            Position = "Lead Developer"
	PositionPrincipalDeveloper       Position = "Principal Developer"
	PositionStaffEngineer            Position = "Staff Engineer"
	PositionJuniorQAEngineer         Position = "Junior QA Engineer"
	PositionQAEngineer               Position = "QA Engineer"
	PositionSeniorQAEngineer         Position = "Senior QA Engineer"
	PositionQALead                   Position = "QA Lead"
	PositionJuniorDevOpsEngineer     Position = "Junior DevOps Engineer"
	PositionDevOpsEngineer           Position = "DevOps Engineer"
	PositionSeniorDevOpsEngineer     Position = "Senior DevOps Engineer"
	PositionDevOpsLead               Position = "DevOps Lead"
	PositionJuniorDesigner           Position = "Junior Designer"
	PositionDesigner                 Position = "Designer"
	PositionSeniorDesigner           Position = "Senior Designer"
	PositionDesignLead               Position = "Design Lead"
	PositionProductManager           Position = "Product Manager"
	PositionSeniorProductManager     Position = "Senior Product Manager"
	PositionEngineeringManager       Position = "Engineering Manager"
	PositionSeniorEngineeringManager Position = "Senior Engineering Manager"
	PositionDirectorOfEngineering    Position = "Director of Engineering"
	PositionVPOfEngineering          Position = "VP of Engineering"
	PositionCTO                      Position = "CTO"
)

// Department は職位から導かれる部門です。
type Department string

const (
	DepartmentEngineering Department = "Engineering"
	DepartmentQA          Department = "QA"
	DepartmentDevOps      Department = "DevOps"
	DepartmentDesign      Department = "Design"
	DepartmentProduct     Department = "Product"
	DepartmentManagement  Department = "Management"
)

// Level は職位から導かれる等級です。
type Level string

const (
	LevelJunior     Level = "Junior"
	LevelMid        Level = "Mid"
	LevelSenior     Level = "Senior"
	LevelLead       Level = "Lead"
	LevelPrincipal  Level = "Principal"
	LevelManagement Level = "Management"
)

type positionTraits struct {
	department Department
	level      Level
}

var positionCatalog = map[Position]positionTraits{
	PositionJuniorDeveloper:          {DepartmentEngineering, LevelJunior},
	PositionDeveloper:                {DepartmentEngineering, LevelMid},
	PositionSeniorDeveloper:          {DepartmentEngineering, LevelSenior},
	PositionLeadDeveloper:            {DepartmentEngineering, LevelLead},
	PositionPrincipalDeveloper:       {DepartmentEngineering, LevelPrincipal},
	PositionStaffEngineer:            {DepartmentEngineering, LevelPrincipal},
	PositionJuniorQAEngineer:         {DepartmentQA, LevelJunior},
	PositionQAEngineer:               {DepartmentQA, LevelMid},
	PositionSeniorQAEngineer:         {DepartmentQA, LevelSenior},
	PositionQALead:                   {DepartmentQA, LevelLead},
	PositionJuniorDevOpsEngineer:     {DepartmentDevOps, LevelJunior},
	PositionDevOpsEngineer:           {DepartmentDevOps, LevelMid},
	PositionSeniorDevOpsEngineer:     {DepartmentDevOps, LevelSenior},
	PositionDevOpsLead:               {DepartmentDevOps, LevelLead},
	PositionJuniorDesigner:           {DepartmentDesign, LevelJunior},
	PositionDesigner:                 {DepartmentDesign, LevelMid},
	PositionSeniorDesigner:           {DepartmentDesign, LevelSenior},
	PositionDesignLead:               {DepartmentDesign, LevelLead},
	PositionProductManager:           {DepartmentProduct, LevelManagement},
	PositionSeniorProductManager:     {DepartmentProduct, LevelManagement},
	PositionEngineeringManager:       {DepartmentManagement, LevelManagement},
	PositionSeniorEngineeringManager: {DepartmentManagement, LevelManagement},
	PositionDirectorOfEngineering:    {DepartmentManagement, LevelManagement},
	PositionVPOfEngineering:          {DepartmentManagement, LevelManagement},
	PositionCTO:                      {DepartmentManagement, LevelManagement},
}

// ParsePosition はカタログに存在する役職名のみ受け付けます。
func ParsePosition(title string) (Position, error) {
	p := Position(strings.TrimSpace(title))
	if _, ok := positionCatalog[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPosition, title)
	}
	return p, nil
}

// Validate はカタログ外の値を拒否します。
func (p Position) Validate() error {
	if _, ok := positionCatalog[p]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPosition, string(p))
	}
	return nil
}

func (p Position) Title() string { return string(p) }

func (p Position) Department() Department { return positionCatalog[p].department }

func (p Position) Level() Level { return positionCatalog[p].level }

// IsManagerial は管理職の役職か判定します。
func (p Position) IsManagerial() bool { return p.Level() == LevelManagement }
