package sqlinline

const QSelectDocument = `--sql 8c2ac22d-379a-45cc-863c-e46a8303c3a9
select version, body
from documents
where collection = $1::text and id = $2::text;
`

const QInsertDocument = `--sql f49c3840-8dda-4e1d-a9e7-4faaf4d3b67b
insert into documents(collection, id, version, body, created_at, updated_at)
values ($1::text, $2::text, 1, $3::jsonb, now(), now())
on conflict (collection, id) do nothing;
`

const QUpdateDocument = `--sql cf8e6a9b-b2c0-42b8-8e61-4e9222331ae1
update documents
set body = $3::jsonb, version = version + 1, updated_at = now()
where collection = $1::text and id = $2::text and version = $4::bigint;
`

const QDeleteDocument = `--sql 2cdd9d29-b928-49bf-a237-088a4b3494c8
delete from documents
where collection = $1::text and id = $2::text;
`

// QFindDocuments is the head of a dynamic query; the store appends filter,
// ordering and window clauses.
const QFindDocuments = `--sql e3b3f69c-7fb5-4e71-a7b9-36ebcda417b0
select id, version, body
from documents
where collection = $1::text`
