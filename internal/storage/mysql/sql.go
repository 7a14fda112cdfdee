package mysql

const insertAreaSQL = `
INSERT INTO areas (name)
VALUES (?)
`

const insertHouseSQL = `
INSERT INTO houses
  (user_id, title, price, area_id, address, room_count, acreage, unit,
   capacity, beds, deposit, min_days, max_days)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertHouseImageSQL = `
INSERT INTO house_images (house_id, url)
VALUES (?, ?)
`

const setIndexImageSQL = `
UPDATE houses SET index_image_url = ?
WHERE id = ? AND index_image_url IS NULL
`

const insertOrderSQL = `
INSERT INTO orders (house_id, begin_date, end_date, status)
VALUES (?, ?, ?, ?)
`

const listAreasSQL = `
SELECT id, name FROM areas ORDER BY id
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Shared projection for list rows; area name resolved via join so the
// cached payload never needs a second lookup.
const listItemSelect = `
SELECT
  h.id,
  h.title,
  h.price,
  COALESCE(a.name, ''),
  COALESCE(h.index_image_url, ''),
  h.room_count,
  h.order_count,
  h.address,
  h.create_time
FROM houses h
LEFT JOIN areas a ON a.id = h.area_id
`

const getHouseSQL = `
SELECT
  h.id,
  h.user_id,
  h.title,
  h.price,
  COALESCE(a.name, ''),
  h.address,
  h.room_count,
  h.acreage,
  h.unit,
  h.capacity,
  h.beds,
  h.deposit,
  h.min_days,
  h.max_days
FROM houses h
LEFT JOIN areas a ON a.id = h.area_id
WHERE h.id = ?
`

const listHouseImagesSQL = `
SELECT url FROM house_images WHERE house_id = ? ORDER BY id
`

const listUserHousesSQL = listItemSelect + `
WHERE h.user_id = ?
ORDER BY h.create_time DESC
`

const listTopBookedSQL = listItemSelect + `
ORDER BY h.order_count DESC
LIMIT ?
`

// Conflict scans: which houses hold an order that collides with the
// requested window. The one-sided variants mirror the historical product
// behavior and are deliberately not symmetric with the two-sided rule.
const conflictBothSQL = `
SELECT DISTINCT house_id FROM orders
WHERE begin_date <= ? AND end_date >= ?
`

const conflictStartSQL = `
SELECT DISTINCT house_id FROM orders
WHERE end_date >= ?
`

const conflictEndSQL = `
SELECT DISTINCT house_id FROM orders
WHERE begin_date >= ?
`
