package repository

// pgQuery pairs a SQL statement with an identifier used in error messages.
type pgQuery struct {
	ID    string
	Query string
}

var (
	queryCreateFormsTable = pgQuery{
		ID: "OFQ-FORM-00",
		Query: `CREATE TABLE IF NOT EXISTS forms (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'draft',
	schema JSONB NOT NULL,
	settings JSONB NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`,
	}
	queryCreateForm = pgQuery{
		ID: "OFQ-FORM-01",
		Query: "INSERT INTO forms (title, slug, description, status, schema, settings, created_at, updated_at) " +
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id",
	}
	queryListForms = pgQuery{
		ID: "OFQ-FORM-02",
		Query: "SELECT id, title, slug, description, status, schema, settings, created_at, updated_at " +
			"FROM forms WHERE ($1::text = '' OR status = $1::text) ORDER BY created_at DESC",
	}
	queryGetFormByID = pgQuery{
		ID: "OFQ-FORM-03",
		Query: "SELECT id, title, slug, description, status, schema, settings, created_at, updated_at " +
			"FROM forms WHERE id = $1",
	}
	queryGetFormBySlug = pgQuery{
		ID: "OFQ-FORM-04",
		Query: "SELECT id, title, slug, description, status, schema, settings, created_at, updated_at " +
			"FROM forms WHERE slug = $1 AND ($2::text = '' OR status = $2::text) LIMIT 1",
	}
	queryUpdateForm = pgQuery{
		ID: "OFQ-FORM-05",
		Query: "UPDATE forms SET title = $2, slug = $3, description = $4, status = $5, schema = $6, " +
			"settings = $7, updated_at = $8 WHERE id = $1",
	}
	queryDeleteForm = pgQuery{
		ID:    "OFQ-FORM-06",
		Query: "DELETE FROM forms WHERE id = $1",
	}
	queryCountForms = pgQuery{
		ID:    "OFQ-FORM-07",
		Query: "SELECT COUNT(*) FROM forms",
	}

	queryCreateSubmissionsTable = pgQuery{
		ID: "OFQ-SUB-00",
		Query: `CREATE TABLE IF NOT EXISTS form_submissions (
	id BIGSERIAL PRIMARY KEY,
	form_id BIGINT NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
	data JSONB NOT NULL,
	submitter_email TEXT NOT NULL DEFAULT '',
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	submitted_at TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`,
	}
	queryCreateSubmissionsIndex = pgQuery{
		ID:    "OFQ-SUB-01",
		Query: "CREATE INDEX IF NOT EXISTS form_submissions_form_created ON form_submissions (form_id, created_at)",
	}
	queryCreateSubmission = pgQuery{
		ID: "OFQ-SUB-02",
		Query: "INSERT INTO form_submissions (form_id, data, submitter_email, ip_address, user_agent, " +
			"submitted_at, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id",
	}
	queryGetSubmissionByID = pgQuery{
		ID: "OFQ-SUB-03",
		Query: "SELECT id, form_id, data, submitter_email, ip_address, user_agent, submitted_at, created_at, updated_at " +
			"FROM form_submissions WHERE id = $1",
	}
	queryListSubmissionsByForm = pgQuery{
		ID: "OFQ-SUB-04",
		Query: "SELECT id, form_id, data, submitter_email, ip_address, user_agent, submitted_at, created_at, updated_at " +
			"FROM form_submissions WHERE form_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3",
	}
	queryCountSubmissionsByForm = pgQuery{
		ID:    "OFQ-SUB-05",
		Query: "SELECT COUNT(*) FROM form_submissions WHERE form_id = $1",
	}
	queryDeleteSubmission = pgQuery{
		ID:    "OFQ-SUB-06",
		Query: "DELETE FROM form_submissions WHERE id = $1",
	}
)
