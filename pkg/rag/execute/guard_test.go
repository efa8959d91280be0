package execute

import (
	"testing"
)

func TestValidateReadOnly(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr bool
	}{
		{
			name: "plain select",
			sql:  "SELECT name FROM dbo.Employees;",
		},
		{
			name: "select with top and joins",
			sql:  "SELECT TOP (10) e.name, d.name FROM dbo.Employees e JOIN dbo.Departments d ON e.dept_id = d.id;",
		},
		{
			name: "select without terminator",
			sql:  "SELECT 1",
		},
		{
			name: "lowercase select",
			sql:  "select count(*) from dbo.Orders;",
		},
		{
			name:    "empty",
			sql:     "   ",
			wantErr: true,
		},
		{
			name:    "update statement",
			sql:     "UPDATE dbo.Employees SET salary = 0;",
			wantErr: true,
		},
		{
			name:    "delete statement",
			sql:     "DELETE FROM dbo.Employees;",
			wantErr: true,
		},
		{
			name:    "chained mutation after select",
			sql:     "SELECT 1; DROP TABLE dbo.Employees;",
			wantErr: true,
		},
		{
			name:    "chained mutation lowercase",
			sql:     "select 1; drop table dbo.Employees",
			wantErr: true,
		},
		{
			name:    "chained select still rejected",
			sql:     "SELECT 1; SELECT 2;",
			wantErr: true,
		},
		{
			name:    "dangerous procedure reference",
			sql:     "SELECT * FROM OPENQUERY(x, 'xp_cmdshell ''dir''');",
			wantErr: true,
		},
		{
			name:    "sp_executesql reference",
			sql:     "SELECT 1 WHERE EXISTS (SELECT sp_executesql);",
			wantErr: true,
		},
		{
			name:    "line comment",
			sql:     "SELECT 1 -- hidden tail",
			wantErr: true,
		},
		{
			name:    "block comment",
			sql:     "SELECT /* sneaky */ 1;",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReadOnly(tt.sql)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateReadOnly(%q) error = %v, wantErr %v", tt.sql, err, tt.wantErr)
			}
		})
	}
}
