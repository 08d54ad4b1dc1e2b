package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/parisxmas/OxiDB/OxiForms/internal/db"
	"github.com/parisxmas/OxiDB/OxiForms/internal/models"
	"github.com/parisxmas/OxiDB/OxiForms/internal/oxidb"
)

type clientMock struct {
	mock.Mock
}

func (m *clientMock) Ping() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *clientMock) Insert(collection string, doc map[string]any) (map[string]any, error) {
	args := m.Called(collection, doc)
	res, _ := args.Get(0).(map[string]any)
	return res, args.Error(1)
}

func (m *clientMock) Find(collection string, query map[string]any, opts *oxidb.FindOptions) ([]map[string]any, error) {
	args := m.Called(collection, query, opts)
	res, _ := args.Get(0).([]map[string]any)
	return res, args.Error(1)
}

func (m *clientMock) FindOne(collection string, query map[string]any) (map[string]any, error) {
	args := m.Called(collection, query)
	res, _ := args.Get(0).(map[string]any)
	return res, args.Error(1)
}

func (m *clientMock) UpdateOne(collection string, query, update map[string]any) (map[string]any, error) {
	args := m.Called(collection, query, update)
	res, _ := args.Get(0).(map[string]any)
	return res, args.Error(1)
}

func (m *clientMock) DeleteOne(collection string, query map[string]any) (map[string]any, error) {
	args := m.Called(collection, query)
	res, _ := args.Get(0).(map[string]any)
	return res, args.Error(1)
}

func (m *clientMock) Count(collection string, query map[string]any) (int, error) {
	args := m.Called(collection, query)
	return args.Int(0), args.Error(1)
}

func (m *clientMock) CreateIndex(collection, field string) error {
	return m.Called(collection, field).Error(0)
}

func (m *clientMock) CreateUniqueIndex(collection, field string) error {
	return m.Called(collection, field).Error(0)
}

func (m *clientMock) CreateCompositeIndex(collection string, fields []string) error {
	return m.Called(collection, fields).Error(0)
}

type staticProvider struct {
	client db.Client
}

func (p staticProvider) Get() db.Client { return p.client }

type OxiRepoTestSuite struct {
	suite.Suite
	client *clientMock
	forms  *FormRepo
	subs   *SubmissionRepo
}

func TestOxiRepoSuite(t *testing.T) {
	suite.Run(t, new(OxiRepoTestSuite))
}

func (suite *OxiRepoTestSuite) SetupTest() {
	suite.client = &clientMock{}
	provider := staticProvider{client: suite.client}
	suite.forms = NewFormRepo(provider)
	suite.subs = NewSubmissionRepo(provider)
}

func (suite *OxiRepoTestSuite) TearDownTest() {
	suite.client.AssertExpectations(suite.T())
}

func (suite *OxiRepoTestSuite) TestCreateFormStripsID() {
	suite.client.On("Insert", FormsCollection, mock.MatchedBy(func(doc map[string]any) bool {
		_, hasID := doc["id"]
		return !hasID && doc["slug"] == "contact" && doc["status"] == "published"
	})).Return(map[string]any{"id": float64(12)}, nil)

	id, err := suite.forms.Create(&models.Form{ID: 99, Slug: "contact", Status: models.StatusPublished,
		Schema: models.DefaultSchema})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(12), id)
}

func (suite *OxiRepoTestSuite) TestCreateFormDuplicateSlug() {
	suite.client.On("Insert", FormsCollection, mock.Anything).
		Return(nil, &oxidb.DuplicateKeyError{Msg: "unique index slug"})

	_, err := suite.forms.Create(&models.Form{Slug: "contact"})
	assert.ErrorIs(suite.T(), err, ErrSlugTaken)
}

func (suite *OxiRepoTestSuite) TestFindBySlugWithStatus() {
	suite.client.On("FindOne", FormsCollection, map[string]any{"slug": "contact", "status": "published"}).
		Return(map[string]any{
			"_id":    float64(3),
			"slug":   "contact",
			"status": "published",
			"schema": map[string]any{"display": "form"},
		}, nil)

	f, err := suite.forms.FindBySlug("contact", models.StatusPublished)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), f)
	assert.Equal(suite.T(), int64(3), f.ID)
	assert.JSONEq(suite.T(), `{"display":"form"}`, string(f.Schema))
}

func (suite *OxiRepoTestSuite) TestFindByIDMissing() {
	suite.client.On("FindOne", FormsCollection, map[string]any{"_id": int64(8)}).Return(nil, nil)

	f, err := suite.forms.FindByID(8)
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), f)
}

func (suite *OxiRepoTestSuite) TestFindAllPublished() {
	suite.client.On("Find", FormsCollection, map[string]any{"status": "published"}, mock.Anything).
		Return([]map[string]any{{"_id": float64(1), "slug": "a"}, {"_id": float64(2), "slug": "b"}}, nil)

	forms, err := suite.forms.FindAll(models.StatusPublished)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), forms, 2)
	assert.Equal(suite.T(), int64(2), forms[1].ID)
}

func (suite *OxiRepoTestSuite) TestCreateSubmission() {
	suite.client.On("Insert", SubmissionsCollection, mock.MatchedBy(func(doc map[string]any) bool {
		return doc["formId"] == float64(4) && doc["submitterEmail"] == "a@b.c"
	})).Return(map[string]any{"id": float64(40)}, nil)

	id, err := suite.subs.Create(&models.Submission{FormID: 4, SubmitterEmail: "a@b.c",
		Data: map[string]any{"email": "a@b.c"}})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(40), id)
}

func (suite *OxiRepoTestSuite) TestCreateSubmissionMissingID() {
	suite.client.On("Insert", SubmissionsCollection, mock.Anything).
		Return(map[string]any{"status": "buffered"}, nil)

	_, err := suite.subs.Create(&models.Submission{FormID: 4})
	assert.Error(suite.T(), err)
}

func (suite *OxiRepoTestSuite) TestFindSubmissionsByForm() {
	query := map[string]any{"formId": int64(4)}
	suite.client.On("Count", SubmissionsCollection, query).Return(3, nil)
	suite.client.On("Find", SubmissionsCollection, query, mock.MatchedBy(func(o *oxidb.FindOptions) bool {
		return *o.Skip == 1 && *o.Limit == 2
	})).Return([]map[string]any{
		{"_id": float64(9), "formId": float64(4), "data": []any{map[string]any{"a": float64(1)}}},
	}, nil)

	subs, total, err := suite.subs.FindByFormID(4, 1, 2)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, total)
	require.Len(suite.T(), subs, 1)
	assert.Equal(suite.T(), int64(9), subs[0].ID)
	assert.Equal(suite.T(), []any{map[string]any{"a": float64(1)}}, subs[0].Data)
}

func (suite *OxiRepoTestSuite) TestEnsureIndexes() {
	suite.client.On("CreateUniqueIndex", FormsCollection, "slug").Return(nil)
	suite.client.On("CreateIndex", FormsCollection, "status").Return(nil)
	suite.client.On("CreateIndex", SubmissionsCollection, "formId").Return(nil)
	suite.client.On("CreateCompositeIndex", SubmissionsCollection, []string{"formId", "createdAt"}).Return(nil)

	require.NoError(suite.T(), suite.forms.EnsureIndexes())
	require.NoError(suite.T(), suite.subs.EnsureIndexes())
}
